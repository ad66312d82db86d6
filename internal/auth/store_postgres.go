// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/identra/internal/platform/apperr"
	"github.com/taibuivan/identra/internal/platform/dberr"
)

// PostgresUserRepository implements the UserRepository interface using pgx.
//
// # Error Mapping
//
// Storage-specific errors (pgx.ErrNoRows, unique violations) are mapped to
// domain-friendly [apperr.AppError] values so callers never see pgx details.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// userColumns is the canonical select list shared by every lookup. Keep in
// sync with scanUser.
const userColumns = `
	id, username, email, passwordhash, fullname, avatarurl, isemailverified,
	refreshtoken, emailverificationtoken, emailverificationexpiry,
	forgotpasswordtoken, forgotpasswordexpiry, createdat, updatedat`

// scanUser maps one row of userColumns onto a User entity.
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.AvatarURL,
		&user.IsEmailVerified,
		&user.RefreshToken,
		&user.EmailVerificationToken,
		&user.EmailVerificationExpiry,
		&user.ForgotPasswordToken,
		&user.ForgotPasswordExpiry,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create persists a new user record into the users.account table.
//
// # Returns
//
// Returns [apperr.Conflict] when the username or email is already taken,
// catching the race two concurrent registrations can create.
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, username, email, passwordhash, fullname, avatarurl, isemailverified,
			refreshtoken, emailverificationtoken, emailverificationexpiry,
			forgotpasswordtoken, forgotpasswordexpiry, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.AvatarURL,
		user.IsEmailVerified,
		user.RefreshToken,
		user.EmailVerificationToken,
		user.EmailVerificationExpiry,
		user.ForgotPasswordToken,
		user.ForgotPasswordExpiry,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("User with email or username already exists")
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

// FindByID retrieves a user record by their unique ID.
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT` + userColumns + `
		FROM users.account
		WHERE id = $1`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

// FindByUsernameOrEmail retrieves the user matching either identifier.
//
// Both columns are non-empty by rule, so an empty argument simply never
// matches. Callers with only one identifier pass "" for the other.
func (repository *PostgresUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error) {
	query := `SELECT` + userColumns + `
		FROM users.account
		WHERE username = $1 OR email = $2`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, username, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_username_or_email_failed: %w", err)
	}

	return user, nil
}

// FindByVerificationToken retrieves the user holding this unexpired
// email-verification token digest.
//
// The expiry check lives in the query on purpose: an expired token produces
// the same not-found result as a token that never existed.
func (repository *PostgresUserRepository) FindByVerificationToken(ctx context.Context, tokenHash string) (*User, error) {
	query := `SELECT` + userColumns + `
		FROM users.account
		WHERE emailverificationtoken = $1 AND emailverificationexpiry > NOW()`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, tokenHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Token")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_verification_token_failed: %w", err)
	}

	return user, nil
}

// FindByResetToken retrieves the user holding this unexpired password-reset
// token digest. Same expiry-in-query semantics as FindByVerificationToken.
func (repository *PostgresUserRepository) FindByResetToken(ctx context.Context, tokenHash string) (*User, error) {
	query := `SELECT` + userColumns + `
		FROM users.account
		WHERE forgotpasswordtoken = $1 AND forgotpasswordexpiry > NOW()`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, tokenHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Token")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_reset_token_failed: %w", err)
	}

	return user, nil
}

// Save persists the full current state of an existing user.
//
// Every mutable column is written. The service mutates entities through
// explicit methods (SetPassword, SetResetToken, ...), so a full-row write is
// both simple and safe: there is no dirty-field tracking to get wrong.
func (repository *PostgresUserRepository) Save(ctx context.Context, user *User) error {
	const query = `
		UPDATE users.account
		SET username = $2, email = $3, passwordhash = $4, fullname = $5,
			avatarurl = $6, isemailverified = $7, refreshtoken = $8,
			emailverificationtoken = $9, emailverificationexpiry = $10,
			forgotpasswordtoken = $11, forgotpasswordexpiry = $12, updatedat = $13
		WHERE id = $1`

	user.UpdatedAt = time.Now()
	tag, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.AvatarURL,
		user.IsEmailVerified,
		user.RefreshToken,
		user.EmailVerificationToken,
		user.EmailVerificationExpiry,
		user.ForgotPasswordToken,
		user.ForgotPasswordExpiry,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_user_repo_save_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}
