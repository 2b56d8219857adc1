package categories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/porterlabs/bucketlist/internal/platform/db"
	"github.com/porterlabs/bucketlist/internal/shared"
)

// Repository defines data access for categories.
type Repository interface {
	List(ctx context.Context) ([]Category, error)
	Get(ctx context.Context, id int64) (Category, error)
	FindByName(ctx context.Context, name string) (Category, error)
	Create(ctx context.Context, category Category) (Category, error)
	Update(ctx context.Context, id int64, category Category) error
	Delete(ctx context.Context, id int64) (Category, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context) ([]Category, error) {
	ctx, cancel := db.WithStoreTimeout(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT id, category_name FROM categories ORDER BY category_name`)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.CategoryName); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, db.Classify(rows.Err())
}

func (r *repository) Get(ctx context.Context, id int64) (Category, error) {
	return r.findOne(ctx, `SELECT id, category_name FROM categories WHERE id = $1`, id)
}

func (r *repository) FindByName(ctx context.Context, name string) (Category, error) {
	return r.findOne(ctx, `SELECT id, category_name FROM categories WHERE category_name = $1`, name)
}

func (r *repository) Create(ctx context.Context, category Category) (Category, error) {
	ctx, cancel := db.WithStoreTimeout(ctx)
	defer cancel()

	var created Category
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (category_name) VALUES ($1) RETURNING id, category_name`,
		category.CategoryName,
	).Scan(&created.ID, &created.CategoryName)
	if err != nil {
		if db.UniqueViolationField(err) != "" {
			return Category{}, shared.Conflict("category_name")
		}
		return Category{}, db.Classify(err)
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, id int64, category Category) error {
	ctx, cancel := db.WithStoreTimeout(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx,
		`UPDATE categories SET category_name = $1 WHERE id = $2`,
		category.CategoryName, id)
	if err != nil {
		if db.UniqueViolationField(err) != "" {
			return shared.Conflict("category_name")
		}
		return db.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) (Category, error) {
	ctx, cancel := db.WithStoreTimeout(ctx)
	defer cancel()

	var deleted Category
	err := r.pool.QueryRow(ctx,
		`DELETE FROM categories WHERE id = $1 RETURNING id, category_name`, id,
	).Scan(&deleted.ID, &deleted.CategoryName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, shared.ErrNotFound
		}
		return Category{}, db.Classify(err)
	}
	return deleted, nil
}

func (r *repository) findOne(ctx context.Context, query string, arg any) (Category, error) {
	ctx, cancel := db.WithStoreTimeout(ctx)
	defer cancel()

	var c Category
	err := r.pool.QueryRow(ctx, query, arg).Scan(&c.ID, &c.CategoryName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, shared.ErrNotFound
		}
		return Category{}, db.Classify(err)
	}
	return c, nil
}
