package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/porterlabs/bucketlist/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates username/password credentials. Every failure mode
// returns shared.ErrInvalidCredentials so the response gives no oracle for
// username enumeration. Store outages are surfaced as such, never as a
// credential failure.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrStoreUnavailable) {
			return nil, err
		}
		// Burn a comparison anyway so a missing username costs the same
		// as a wrong password.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// CurrentPrincipal resolves the session bound to ctx into a Principal. A
// missing session, an anonymous session, or a session whose user has since
// been deleted all resolve to (nil, nil).
func (s *Service) CurrentPrincipal(ctx context.Context) (*Principal, error) {
	sess := shared.SessionFromContext(ctx)
	if sess == nil || sess.User() == "" {
		return nil, nil
	}
	user, err := s.repo.FindByUsername(ctx, sess.User())
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &Principal{ID: user.ID, Username: user.Username, Role: user.Role}, nil
}

// RegisterSession persists session metadata for auditing and purge.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

// dummyHash is a bcrypt hash of an unguessable throwaway value, used to
// equalize timing when the username does not exist.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("bucketlist-dummy"), bcrypt.MinCost)
	if err != nil {
		return []byte("$2a$04$TQoYa0T1b6SU6XrbmBP5de2Pt5Vltt4WW2VMv2iYXVAp276pgVyO6")
	}
	return h
}()
