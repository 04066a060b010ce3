// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"slices"
	"strings"
)

// # User Roles

// Role names as stored in users.role and carried in the "auth" claim.
const (
	// Unrestricted catalog and account access
	RoleAdministrator = "ADMINISTRATOR"

	// Can curate books and categories
	RoleLibrarian = "LIBRARIAN"

	// Default role for registered patrons
	RoleReader = "READER"
)

// # Principal

// Principal is the authenticated identity reconstructed from a token or a
// successful credential check.
//
// It is a plain value passed explicitly between components. The HTTP layer
// stores it in the request context only for downstream handlers.
type Principal struct {
	Subject string   `json:"username"`
	Roles   []string `json:"roles"`
}

// NewPrincipal builds a [Principal] with a normalised role set: empty names
// dropped, duplicates removed, order of first appearance kept.
func NewPrincipal(subject string, roles ...string) Principal {
	normalised := make([]string, 0, len(roles))
	for _, role := range roles {
		role = strings.TrimSpace(role)
		if role == "" || slices.Contains(normalised, role) {
			continue
		}
		normalised = append(normalised, role)
	}
	return Principal{Subject: subject, Roles: normalised}
}

// HasAnyRole reports whether the principal holds at least one of roles.
func (principal Principal) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if slices.Contains(principal.Roles, role) {
			return true
		}
	}
	return false
}

// Authorities renders the role set as the comma-joined "auth" claim value.
func (principal Principal) Authorities() string {
	return strings.Join(principal.Roles, authoritiesSeparator)
}

// parseAuthorities is the inverse of [Principal.Authorities].
func parseAuthorities(claim string) []string {
	if claim == "" {
		return nil
	}
	return strings.Split(claim, authoritiesSeparator)
}

const authoritiesSeparator = ","
