// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/elib/internal/platform/sec"
)

/*
TestNewPrincipal_NormalisesRoles checks blanks and duplicates are dropped.
*/
func TestNewPrincipal_NormalisesRoles(t *testing.T) {
	principal := sec.NewPrincipal("alice", "READER", "", " LIBRARIAN ", "READER")

	assert.Equal(t, []string{"READER", "LIBRARIAN"}, principal.Roles)
	assert.Equal(t, "READER,LIBRARIAN", principal.Authorities())
}

/*
TestPrincipal_HasAnyRole tests set membership across several candidates.
*/
func TestPrincipal_HasAnyRole(t *testing.T) {
	librarian := sec.NewPrincipal("lena", sec.RoleLibrarian)

	tests := []struct {
		name     string
		roles    []string
		expected bool
	}{
		{"exact_match", []string{sec.RoleLibrarian}, true},
		{"one_of_many", []string{sec.RoleAdministrator, sec.RoleLibrarian}, true},
		{"no_match", []string{sec.RoleAdministrator}, false},
		{"no_candidates", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, librarian.HasAnyRole(tt.roles...))
		})
	}
}

/*
TestPasswordHash verifies bcrypt hashing and comparison.
*/
func TestPasswordHash(t *testing.T) {
	hash, err := sec.HashPassword("p@ss")
	require.NoError(t, err)

	assert.NotEqual(t, "p@ss", hash)
	assert.True(t, sec.CheckPasswordHash("p@ss", hash))
	assert.False(t, sec.CheckPasswordHash("wrong", hash))
	assert.False(t, sec.CheckPasswordHash("p@ss", "not-a-bcrypt-hash"))
}
