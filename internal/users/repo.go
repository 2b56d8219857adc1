package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/porterlabs/bucketlist/internal/auth"
	"github.com/porterlabs/bucketlist/internal/platform/db"
	"github.com/porterlabs/bucketlist/internal/shared"
)

// Repository defines data access for credential records.
type Repository interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id int64) (User, error)
	FindByUsername(ctx context.Context, username string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, user User) (User, error)
	Update(ctx context.Context, id int64, user User) error
	Delete(ctx context.Context, id int64) (User, error)
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, first_name, last_name, username, email, password_hash, role, date_added, date_modified`

// List returns all users ordered by username.
func (r *PGRepository) List(ctx context.Context) ([]User, error) {
	ctx, cancel := db.WithStoreTimeout(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, db.Classify(rows.Err())
}

// Get fetches a user by id.
func (r *PGRepository) Get(ctx context.Context, id int64) (User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByUsername fetches a user by username.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

// FindByEmail fetches a user by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// Create inserts a new credential record. date_added and date_modified are
// both set to the same instant by the store.
func (r *PGRepository) Create(ctx context.Context, user User) (User, error) {
	ctx, cancel := db.WithStoreTimeout(ctx)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (first_name, last_name, username, email, password_hash, role, date_added, date_modified)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING `+userColumns,
		user.FirstName, user.LastName, user.Username, user.Email, user.PasswordHash, string(user.Role))
	created, err := scanUser(row)
	if err != nil {
		if field := db.UniqueViolationField(err); field != "" {
			return User{}, shared.Conflict(field)
		}
		return User{}, db.Classify(err)
	}
	return created, nil
}

// Update replaces the mutable fields of a record. date_added is never
// caller-writable; date_modified is refreshed by the store.
func (r *PGRepository) Update(ctx context.Context, id int64, user User) error {
	ctx, cancel := db.WithStoreTimeout(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET first_name = $1, last_name = $2, username = $3, email = $4, password_hash = $5, role = $6, date_modified = NOW()
		WHERE id = $7`,
		user.FirstName, user.LastName, user.Username, user.Email, user.PasswordHash, string(user.Role), id)
	if err != nil {
		if field := db.UniqueViolationField(err); field != "" {
			return shared.Conflict(field)
		}
		return db.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a record and returns it for reporting.
func (r *PGRepository) Delete(ctx context.Context, id int64) (User, error) {
	ctx, cancel := db.WithStoreTimeout(ctx)
	defer cancel()

	row := r.pool.QueryRow(ctx, `DELETE FROM users WHERE id = $1 RETURNING `+userColumns, id)
	deleted, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, db.Classify(err)
	}
	return deleted, nil
}

func (r *PGRepository) findOne(ctx context.Context, query string, arg any) (User, error) {
	ctx, cancel := db.WithStoreTimeout(ctx)
	defer cancel()

	user, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, db.Classify(err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (User, error) {
	var (
		user User
		role string
	)
	err := row.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Username, &user.Email,
		&user.PasswordHash, &role, &user.DateAdded, &user.DateModified)
	if err != nil {
		return User{}, err
	}
	user.Role = auth.Role(role)
	return user, nil
}

var _ Repository = (*PGRepository)(nil)
