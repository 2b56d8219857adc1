package activities

import (
	"context"
	"strings"

	"github.com/porterlabs/bucketlist/internal/shared"
)

// NewActivity carries caller-supplied fields for a create. The owner and
// both dates are set by the service, never by the caller.
type NewActivity struct {
	ActivityName  string
	Category      string
	Description   string
	ShareStatus   string
	EstimatedCost string
	Address       string
	City          string
	State         string
	Country       string
	ExpectedDate  string
}

// Service handles activity business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns every activity.
func (s *Service) List(ctx context.Context) ([]Activity, error) {
	return s.repo.List(ctx)
}

// ListByOwner returns the activities created by the given username.
func (s *Service) ListByOwner(ctx context.Context, username string) ([]Activity, error) {
	return s.repo.ListByOwner(ctx, username)
}

// Search returns activities whose name or description contains the query.
// A blank query returns no matches rather than the full list.
func (s *Service) Search(ctx context.Context, query string) ([]Activity, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	return s.repo.Search(ctx, query)
}

// Get returns an activity by id.
func (s *Service) Get(ctx context.Context, id int64) (Activity, error) {
	if id <= 0 {
		return Activity{}, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// Create inserts an activity owned by the given username. Duplicate names
// are allowed; two people can both want to see the northern lights.
func (s *Service) Create(ctx context.Context, username string, in NewActivity) (Activity, error) {
	name := strings.TrimSpace(in.ActivityName)
	if name == "" {
		return Activity{}, shared.ErrValidation
	}
	return s.repo.Create(ctx, Activity{
		ActivityName:  name,
		Category:      in.Category,
		Description:   in.Description,
		ShareStatus:   in.ShareStatus,
		EstimatedCost: in.EstimatedCost,
		Address:       in.Address,
		City:          in.City,
		State:         in.State,
		Country:       in.Country,
		ExpectedDate:  in.ExpectedDate,
		Username:      username,
	})
}

// Update replaces the mutable fields of an activity and returns the stored
// result. The owner and date_added are untouched.
func (s *Service) Update(ctx context.Context, id int64, in NewActivity) (Activity, error) {
	if id <= 0 {
		return Activity{}, shared.ErrNotFound
	}
	name := strings.TrimSpace(in.ActivityName)
	if name == "" {
		return Activity{}, shared.ErrValidation
	}
	err := s.repo.Update(ctx, id, Activity{
		ActivityName:  name,
		Category:      in.Category,
		Description:   in.Description,
		ShareStatus:   in.ShareStatus,
		EstimatedCost: in.EstimatedCost,
		Address:       in.Address,
		City:          in.City,
		State:         in.State,
		Country:       in.Country,
		ExpectedDate:  in.ExpectedDate,
	})
	if err != nil {
		return Activity{}, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes an activity and returns the record as it stood.
func (s *Service) Delete(ctx context.Context, id int64) (Activity, error) {
	if id <= 0 {
		return Activity{}, shared.ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}
