package statuses

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/porterlabs/bucketlist/internal/shared"
)

// Service handles share-status business logic.
type Service struct {
	repo  Repository
	upper cases.Caser
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, upper: cases.Upper(language.English)}
}

// List returns all share statuses.
func (s *Service) List(ctx context.Context) ([]Status, error) {
	return s.repo.List(ctx)
}

// Create inserts a status after checking name uniqueness.
func (s *Service) Create(ctx context.Context, name string) (Status, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Status{}, errors.New("statuses: share status is required")
	}
	runes := []rune(strings.ToLower(name))
	normalized := s.upper.String(string(runes[0])) + string(runes[1:])

	if _, err := s.repo.FindByName(ctx, normalized); err == nil {
		return Status{}, shared.Conflict("share_status")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return Status{}, err
	}
	return s.repo.Create(ctx, Status{ShareStatus: normalized})
}

// Delete removes a status. Activities citing the deleted label keep the
// dangling reference.
func (s *Service) Delete(ctx context.Context, id int64) (Status, error) {
	if id <= 0 {
		return Status{}, shared.ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}
