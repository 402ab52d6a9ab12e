package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"skytracker/backend/internal/models/entities"
)

// UserRepository handles the users table via sqlx
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db}
}

func (r *UserRepository) InsertUser(ctx context.Context, user *entities.User) error {
	query := `
		INSERT INTO users (
			email,
			username,
			full_name,
			password_hash,
			is_active
		)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at;
	`

	return r.db.QueryRowxContext(ctx, query,
		strings.ToLower(user.Email),
		user.Username,
		user.FullName,
		user.PasswordHash,
		user.IsActive,
	).StructScan(user)
}

// FindByIdentifier resolves a user by email or username. Returns nil without
// an error when no account matches.
func (r *UserRepository) FindByIdentifier(ctx context.Context, identifier string) (*entities.User, error) {
	query := `
		SELECT * FROM users
		WHERE lower(email) = lower($1) OR lower(username) = lower($1)
		LIMIT 1;
	`

	var user entities.User
	err := r.db.QueryRowxContext(ctx, query, identifier).StructScan(&user)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	var user entities.User
	err := r.db.QueryRowxContext(ctx, `SELECT * FROM users WHERE id = $1;`, id).StructScan(&user)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, user *entities.User) error {
	query := `
		UPDATE users
		SET email = $2, username = $3, full_name = $4, password_hash = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at;
	`

	return r.db.QueryRowxContext(ctx, query,
		user.ID,
		strings.ToLower(user.Email),
		user.Username,
		user.FullName,
		user.PasswordHash,
	).Scan(&user.UpdatedAt)
}

func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1;`, id)
	return err
}
