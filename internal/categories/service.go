package categories

import (
	"context"
	"errors"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/porterlabs/bucketlist/internal/shared"
)

// Service handles category business logic.
type Service struct {
	repo  Repository
	upper cases.Caser
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, upper: cases.Upper(language.English)}
}

// List returns all categories.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	return s.repo.List(ctx)
}

// Get returns a category by id.
func (s *Service) Get(ctx context.Context, id int64) (Category, error) {
	if id <= 0 {
		return Category{}, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// Create inserts a category after checking name uniqueness. The store's
// unique index closes the check-then-insert race.
func (s *Service) Create(ctx context.Context, name string) (Category, error) {
	normalized, err := s.normalize(name)
	if err != nil {
		return Category{}, err
	}
	if _, err := s.repo.FindByName(ctx, normalized); err == nil {
		return Category{}, shared.Conflict("category_name")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return Category{}, err
	}
	return s.repo.Create(ctx, Category{CategoryName: normalized})
}

// Update renames a category.
func (s *Service) Update(ctx context.Context, id int64, name string) (Category, error) {
	if id <= 0 {
		return Category{}, shared.ErrNotFound
	}
	normalized, err := s.normalize(name)
	if err != nil {
		return Category{}, err
	}
	if err := s.repo.Update(ctx, id, Category{CategoryName: normalized}); err != nil {
		return Category{}, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a category. Activities referring to the deleted name keep
// the dangling reference.
func (s *Service) Delete(ctx context.Context, id int64) (Category, error) {
	if id <= 0 {
		return Category{}, shared.ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}
