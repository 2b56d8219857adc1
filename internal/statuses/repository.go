package statuses

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/porterlabs/bucketlist/internal/platform/db"
	"github.com/porterlabs/bucketlist/internal/shared"
)

// Repository defines data access for share statuses.
type Repository interface {
	List(ctx context.Context) ([]Status, error)
	FindByName(ctx context.Context, name string) (Status, error)
	Create(ctx context.Context, status Status) (Status, error)
	Delete(ctx context.Context, id int64) (Status, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context) ([]Status, error) {
	ctx, cancel := db.WithStoreTimeout(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT id, share_status FROM statuses ORDER BY share_status`)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	var statuses []Status
	for rows.Next() {
		var s Status
		if err := rows.Scan(&s.ID, &s.ShareStatus); err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}
	return statuses, db.Classify(rows.Err())
}

func (r *repository) FindByName(ctx context.Context, name string) (Status, error) {
	ctx, cancel := db.WithStoreTimeout(ctx)
	defer cancel()

	var s Status
	err := r.pool.QueryRow(ctx, `SELECT id, share_status FROM statuses WHERE share_status = $1`, name).
		Scan(&s.ID, &s.ShareStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Status{}, shared.ErrNotFound
		}
		return Status{}, db.Classify(err)
	}
	return s, nil
}

func (r *repository) Create(ctx context.Context, status Status) (Status, error) {
	ctx, cancel := db.WithStoreTimeout(ctx)
	defer cancel()

	var created Status
	err := r.pool.QueryRow(ctx,
		`INSERT INTO statuses (share_status) VALUES ($1) RETURNING id, share_status`,
		status.ShareStatus,
	).Scan(&created.ID, &created.ShareStatus)
	if err != nil {
		if db.UniqueViolationField(err) != "" {
			return Status{}, shared.Conflict("share_status")
		}
		return Status{}, db.Classify(err)
	}
	return created, nil
}

func (r *repository) Delete(ctx context.Context, id int64) (Status, error) {
	ctx, cancel := db.WithStoreTimeout(ctx)
	defer cancel()

	var deleted Status
	err := r.pool.QueryRow(ctx,
		`DELETE FROM statuses WHERE id = $1 RETURNING id, share_status`, id,
	).Scan(&deleted.ID, &deleted.ShareStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Status{}, shared.ErrNotFound
		}
		return Status{}, db.Classify(err)
	}
	return deleted, nil
}
