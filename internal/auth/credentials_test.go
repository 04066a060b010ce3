// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/elib/internal/platform/apperr"
	"github.com/taibuivan/elib/internal/platform/sec"
)

/*
TestCredentialVerifier_Verify covers every outcome of the password step.
*/
func TestCredentialVerifier_Verify(t *testing.T) {
	repository := newFakeUserRepository()
	repository.add(t, "alice", "p@ss", sec.RoleReader)
	dormant := repository.add(t, "bob", "hunter2", sec.RoleLibrarian)
	repository.users[dormant.Username].IsActive = false

	verifier, err := NewCredentialVerifier(repository)
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
		wantCode string
	}{
		{"valid", "alice", "p@ss", ""},
		{"wrong_password", "alice", "P@ss", apperr.CodeInvalidCredentials},
		{"unknown_user", "mallory", "p@ss", apperr.CodeInvalidCredentials},
		{"inactive_user", "bob", "hunter2", apperr.CodeInvalidCredentials},
		{"empty_password", "alice", "", apperr.CodeInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authenticated, err := verifier.Verify(context.Background(), tt.username, tt.password)

			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, apperr.HasCode(err, tt.wantCode))
				assert.Nil(t, authenticated)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "alice", authenticated.Principal.Subject)
			assert.Equal(t, []string{sec.RoleReader}, authenticated.Principal.Roles)
			assert.Equal(t, "alice@elib.test", authenticated.Email)
		})
	}
}

/*
TestCredentialVerifier_StoreFailure verifies infrastructure errors are not disguised as bad credentials.
*/
func TestCredentialVerifier_StoreFailure(t *testing.T) {
	repository := newFakeUserRepository()
	repository.err = errors.New("connection refused")

	verifier, err := NewCredentialVerifier(repository)
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), "alice", "p@ss")
	require.Error(t, err)
	assert.False(t, apperr.HasCode(err, apperr.CodeInvalidCredentials))
	assert.ErrorContains(t, err, "connection refused")
}
