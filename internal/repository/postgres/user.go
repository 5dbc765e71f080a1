package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jlacunza/udcito/internal/repository"
)

// UserRepo implements repository.UserRepository
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `email, google_id, role, is_active, given_name, family_name,
	full_name, picture_url, locale, metadata, created_at, updated_at,
	last_login, last_seen, created_by`

// Upsert creates a user or refreshes identity fields on conflict
func (r *UserRepo) Upsert(ctx context.Context, user *repository.User) error {
	metadataJSON, err := json.Marshal(user.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `
		INSERT INTO users (email, google_id, role, is_active, given_name, family_name,
			full_name, picture_url, locale, metadata, created_at, updated_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW(), $11)
		ON CONFLICT (email) DO UPDATE SET
			google_id = EXCLUDED.google_id,
			given_name = EXCLUDED.given_name,
			family_name = EXCLUDED.family_name,
			full_name = EXCLUDED.full_name,
			picture_url = EXCLUDED.picture_url,
			locale = EXCLUDED.locale,
			updated_at = NOW()
	`
	_, err = r.db.Pool.Exec(ctx, query,
		user.Email, user.GoogleID, user.Role, user.IsActive, user.GivenName,
		user.FamilyName, user.FullName, user.PictureURL, user.Locale,
		metadataJSON, user.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// GetByEmail retrieves a user by email
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)

	var user repository.User
	var metadataJSON []byte

	err := r.db.Pool.QueryRow(ctx, query, email).Scan(
		&user.Email, &user.GoogleID, &user.Role, &user.IsActive,
		&user.GivenName, &user.FamilyName, &user.FullName, &user.PictureURL,
		&user.Locale, &metadataJSON, &user.CreatedAt, &user.UpdatedAt,
		&user.LastLogin, &user.LastSeen, &user.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &user.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return &user, nil
}

// List retrieves all users with pagination
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]*repository.User, int, error) {
	var total int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, userColumns)
	rows, err := r.db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*repository.User
	for rows.Next() {
		var user repository.User
		var metadataJSON []byte
		if err := rows.Scan(
			&user.Email, &user.GoogleID, &user.Role, &user.IsActive,
			&user.GivenName, &user.FamilyName, &user.FullName, &user.PictureURL,
			&user.Locale, &metadataJSON, &user.CreatedAt, &user.UpdatedAt,
			&user.LastLogin, &user.LastSeen, &user.CreatedBy,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &user.Metadata); err != nil {
				return nil, 0, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}
		users = append(users, &user)
	}

	return users, total, nil
}

// UpdateRole changes a user's role
func (r *UserRepo) UpdateRole(ctx context.Context, email string, role repository.Role) error {
	result, err := r.db.Pool.Exec(ctx,
		`UPDATE users SET role = $2, updated_at = NOW() WHERE email = $1`,
		email, role)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetActive enables or disables a user
func (r *UserRepo) SetActive(ctx context.Context, email string, active bool) error {
	result, err := r.db.Pool.Exec(ctx,
		`UPDATE users SET is_active = $2, updated_at = NOW() WHERE email = $1`,
		email, active)
	if err != nil {
		return fmt.Errorf("failed to set active: %w", err)
	}
	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// TouchLogin records a successful login time
func (r *UserRepo) TouchLogin(ctx context.Context, email string, at time.Time) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE users SET last_login = $2, last_seen = $2 WHERE email = $1`,
		email, at)
	if err != nil {
		return fmt.Errorf("failed to touch login: %w", err)
	}
	return nil
}

// TouchSeen records the latest activity time
func (r *UserRepo) TouchSeen(ctx context.Context, email string, at time.Time) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE users SET last_seen = $2 WHERE email = $1`,
		email, at)
	if err != nil {
		return fmt.Errorf("failed to touch seen: %w", err)
	}
	return nil
}

// Ensure UserRepo implements the interface
var _ repository.UserRepository = (*UserRepo)(nil)
