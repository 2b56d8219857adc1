package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/porterlabs/bucketlist/internal/platform/db"
	"github.com/porterlabs/bucketlist/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, id string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByUsername fetches the credential view of a user by username.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	ctx, cancel := db.WithStoreTimeout(ctx)
	defer cancel()

	var (
		user User
		role string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, role, date_added, date_modified FROM users WHERE username = $1`,
		username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, db.Classify(err)
	}
	parsed, ok := ParseRole(role)
	if !ok {
		// A corrupted role never authenticates into a valid principal.
		return nil, shared.ErrNotFound
	}
	user.Role = parsed
	return &user, nil
}

// CreateSession records a login session for auditing and expiry tracking.
func (r *PGRepository) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	ctx, cancel := db.WithStoreTimeout(ctx)
	defer cancel()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (id, user_id, created_at, expires_at, ip, user_agent) VALUES ($1, $2, NOW(), $3, $4, $5)`,
		id, userID, expiresAt.UTC(), ip, ua)
	return db.Classify(err)
}

// DeleteSession removes a session record.
func (r *PGRepository) DeleteSession(ctx context.Context, id string) error {
	ctx, cancel := db.WithStoreTimeout(ctx)
	defer cancel()

	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return db.Classify(err)
}

var _ Repository = (*PGRepository)(nil)
