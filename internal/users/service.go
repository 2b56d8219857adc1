package users

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/porterlabs/bucketlist/internal/auth"
	"github.com/porterlabs/bucketlist/internal/shared"
)

// NewUser carries the submitted fields for a registration or admin create.
type NewUser struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
	Role      auth.Role
}

// UserUpdate carries the caller-writable fields of an update. A blank
// Password keeps the stored hash. date_added is never part of an update.
type UserUpdate struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
	Role      auth.Role
}

// Service handles credential record business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a new credential record. Username and email are each
// checked for uniqueness before the insert; the store's unique indexes
// close the remaining race, and either path reports the same conflict.
func (s *Service) Create(ctx context.Context, in NewUser) (User, error) {
	if err := s.validate(in.Username, in.Email, in.Role); err != nil {
		return User{}, err
	}
	if in.Password == "" {
		return User{}, errors.New("users: password required")
	}
	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return User{}, shared.Conflict("email")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return User{}, err
	}
	if _, err := s.repo.FindByUsername(ctx, in.Username); err == nil {
		return User{}, shared.Conflict("username")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	return s.repo.Create(ctx, User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: string(hash),
		Role:         in.Role,
	})
}

// Update replaces the mutable fields of a record.
func (s *Service) Update(ctx context.Context, id int64, in UserUpdate) (User, error) {
	if err := s.validate(in.Username, in.Email, in.Role); err != nil {
		return User{}, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}

	hash := current.PasswordHash
	if in.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		hash = string(h)
	}

	updated := User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		Role:         in.Role,
	}
	if err := s.repo.Update(ctx, id, updated); err != nil {
		return User{}, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a record and returns the prior record for reporting.
func (s *Service) Delete(ctx context.Context, id int64) (User, error) {
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(username, email string, role auth.Role) error {
	if strings.TrimSpace(username) == "" {
		return errors.New("users: username required")
	}
	if strings.TrimSpace(email) == "" {
		return errors.New("users: email required")
	}
	if _, ok := auth.ParseRole(string(role)); !ok {
		return errors.New("users: invalid role")
	}
	return nil
}
