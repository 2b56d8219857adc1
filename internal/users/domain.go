package users

import (
	"time"

	"github.com/porterlabs/bucketlist/internal/auth"
)

// User is the full credential record held by the identity store.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Username     string
	Email        string
	PasswordHash string
	Role         auth.Role
	DateAdded    time.Time
	DateModified time.Time
}
