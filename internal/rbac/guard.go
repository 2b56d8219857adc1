package rbac

import (
	"github.com/porterlabs/bucketlist/internal/auth"
)

// Reason explains why a guard denied a request.
type Reason string

const (
	// ReasonUnauthenticated means no principal was present.
	ReasonUnauthenticated Reason = "unauthenticated"
	// ReasonInsufficientRole means the principal lacks a required role.
	ReasonInsufficientRole Reason = "insufficient_role"
)

// Decision is the outcome of a role check.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Allowed is the decision admitting the operation.
var Allowed = Decision{Allowed: true}

// Denied builds a denial with the given reason.
func Denied(reason Reason) Decision {
	return Decision{Reason: reason}
}

// RequireRole admits a principal holding any of the allowed roles. A nil
// principal is Unauthenticated; a principal with a role outside the allowed
// set, including a role that is not one of the enumerated values, is
// InsufficientRole. It never panics.
func RequireRole(p *auth.Principal, allowed ...auth.Role) Decision {
	if p == nil {
		return Denied(ReasonUnauthenticated)
	}
	if _, ok := auth.ParseRole(string(p.Role)); !ok {
		return Denied(ReasonInsufficientRole)
	}
	for _, role := range allowed {
		if p.Role == role {
			return Allowed
		}
	}
	return Denied(ReasonInsufficientRole)
}
