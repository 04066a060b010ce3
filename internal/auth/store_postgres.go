// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/elib/internal/platform/apperr"
	"github.com/taibuivan/elib/internal/platform/dberr"
)

// PostgresUserRepository implements [UserRepository] over users.account,
// users.role and users.accountrole.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// FindByUsernameWithRoles loads an account and its roles in one round trip.
//
// # Returns
//
// Returns [*User] if found, or [apperr.NotFound] if no account exists.
// An account without roles is returned with an empty Roles slice.
func (repository *PostgresUserRepository) FindByUsernameWithRoles(context context.Context, username string) (*User, error) {
	const query = `
		SELECT a.id, a.username, a.email, a.passwordhash, a.isactive, a.createdat, a.updatedat,
		       r.id, r.name
		FROM users.account a
		LEFT JOIN users.accountrole ar ON ar.accountid = a.id
		LEFT JOIN users.role r ON r.id = ar.roleid
		WHERE a.username = $1 AND a.deletedat IS NULL
		ORDER BY r.id`

	rows, err := repository.pool.Query(context, query, username)
	if err != nil {
		return nil, dberr.Wrap(err, "find_user_with_roles")
	}
	defer rows.Close()

	var user *User
	for rows.Next() {
		var (
			current  User
			roleID   *int
			roleName *string
		)

		if err := rows.Scan(
			&current.ID,
			&current.Username,
			&current.Email,
			&current.PasswordHash,
			&current.IsActive,
			&current.CreatedAt,
			&current.UpdatedAt,
			&roleID,
			&roleName,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_user_with_roles")
		}

		// Account columns repeat on every joined row.
		if user == nil {
			current.Roles = []Role{}
			user = &current
		}
		if roleID != nil && roleName != nil {
			user.Roles = append(user.Roles, Role{ID: *roleID, Name: *roleName})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate_user_with_roles")
	}

	if user == nil {
		return nil, apperr.NotFound("User")
	}

	return user, nil
}

// Create inserts the account and its role links in a single transaction.
//
// # Parameters
//   - context: Context for the database operation.
//   - user: The account to persist. ID, CreatedAt and UpdatedAt are filled in.
//   - roleNames: Names from users.role. Unknown names are ignored.
func (repository *PostgresUserRepository) Create(context context.Context, user *User, roleNames ...string) error {
	const insertAccount = `
		INSERT INTO users.account (username, email, passwordhash, isactive, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id`

	const linkRoles = `
		INSERT INTO users.accountrole (accountid, roleid)
		SELECT $1, r.id FROM users.role r WHERE r.name = ANY($2)
		RETURNING roleid`

	now := time.Now().UTC()

	err := pgx.BeginFunc(context, repository.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(context, insertAccount,
			user.Username,
			user.Email,
			user.PasswordHash,
			user.IsActive,
			now,
		).Scan(&user.ID); err != nil {
			return err
		}

		if len(roleNames) == 0 {
			return nil
		}

		rows, err := tx.Query(context, linkRoles, user.ID, roleNames)
		if err != nil {
			return err
		}
		_, err = pgx.CollectRows(rows, pgx.RowTo[int])
		return err
	})
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_user_repo_create_failed: %w", err), "create_user")
	}

	user.CreatedAt = now
	user.UpdatedAt = now
	user.Roles = make([]Role, 0, len(roleNames))
	for _, name := range roleNames {
		user.Roles = append(user.Roles, Role{Name: name})
	}

	return nil
}
