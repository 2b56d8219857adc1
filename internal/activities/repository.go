package activities

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/porterlabs/bucketlist/internal/platform/db"
	"github.com/porterlabs/bucketlist/internal/shared"
)

// Repository defines data access for activities.
type Repository interface {
	List(ctx context.Context) ([]Activity, error)
	ListByOwner(ctx context.Context, username string) ([]Activity, error)
	Search(ctx context.Context, query string) ([]Activity, error)
	Get(ctx context.Context, id int64) (Activity, error)
	Create(ctx context.Context, activity Activity) (Activity, error)
	Update(ctx context.Context, id int64, activity Activity) error
	Delete(ctx context.Context, id int64) (Activity, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const activityColumns = `id, activity_name, category, description, share_status, estimated_cost,
	address, city, state, country, expected_date, username, date_added, date_modified`

func (r *repository) List(ctx context.Context) ([]Activity, error) {
	return r.query(ctx, `SELECT `+activityColumns+` FROM activities ORDER BY id`)
}

func (r *repository) ListByOwner(ctx context.Context, username string) ([]Activity, error) {
	return r.query(ctx, `SELECT `+activityColumns+` FROM activities WHERE username = $1 ORDER BY id`, username)
}

// Search matches a substring of the name or description. Results are sorted
// by name then id so repeated searches return a stable order.
func (r *repository) Search(ctx context.Context, query string) ([]Activity, error) {
	pattern := "%" + query + "%"
	return r.query(ctx,
		`SELECT `+activityColumns+` FROM activities
		 WHERE activity_name ILIKE $1 OR description ILIKE $1
		 ORDER BY activity_name, id`, pattern)
}

func (r *repository) Get(ctx context.Context, id int64) (Activity, error) {
	ctx, cancel := db.WithStoreTimeout(ctx)
	defer cancel()

	activity, err := scanActivity(r.pool.QueryRow(ctx, `SELECT `+activityColumns+` FROM activities WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Activity{}, shared.ErrNotFound
		}
		return Activity{}, db.Classify(err)
	}
	return activity, nil
}

func (r *repository) Create(ctx context.Context, a Activity) (Activity, error) {
	ctx, cancel := db.WithStoreTimeout(ctx)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO activities (activity_name, category, description, share_status, estimated_cost,
			address, city, state, country, expected_date, username, date_added, date_modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING `+activityColumns,
		a.ActivityName, a.Category, a.Description, a.ShareStatus, a.EstimatedCost,
		a.Address, a.City, a.State, a.Country, a.ExpectedDate, a.Username)
	created, err := scanActivity(row)
	if err != nil {
		return Activity{}, db.Classify(err)
	}
	return created, nil
}

// Update replaces the mutable fields. date_added and username stay as
// stored; date_modified is refreshed.
func (r *repository) Update(ctx context.Context, id int64, a Activity) error {
	ctx, cancel := db.WithStoreTimeout(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `
		UPDATE activities
		SET activity_name = $1, category = $2, description = $3, share_status = $4, estimated_cost = $5,
			address = $6, city = $7, state = $8, country = $9, expected_date = $10, date_modified = NOW()
		WHERE id = $11`,
		a.ActivityName, a.Category, a.Description, a.ShareStatus, a.EstimatedCost,
		a.Address, a.City, a.State, a.Country, a.ExpectedDate, id)
	if err != nil {
		return db.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) (Activity, error) {
	ctx, cancel := db.WithStoreTimeout(ctx)
	defer cancel()

	deleted, err := scanActivity(r.pool.QueryRow(ctx, `DELETE FROM activities WHERE id = $1 RETURNING `+activityColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Activity{}, shared.ErrNotFound
		}
		return Activity{}, db.Classify(err)
	}
	return deleted, nil
}

func (r *repository) query(ctx context.Context, sql string, args ...any) ([]Activity, error) {
	ctx, cancel := db.WithStoreTimeout(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, db.Classify(rows.Err())
}

func scanActivity(row pgx.Row) (Activity, error) {
	var a Activity
	err := row.Scan(&a.ID, &a.ActivityName, &a.Category, &a.Description, &a.ShareStatus, &a.EstimatedCost,
		&a.Address, &a.City, &a.State, &a.Country, &a.ExpectedDate, &a.Username, &a.DateAdded, &a.DateModified)
	return a, err
}
