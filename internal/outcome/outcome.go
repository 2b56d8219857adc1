// Package outcome translates repository results into user-facing messages.
// It is pure: no I/O, no authorization decisions.
package outcome

import (
	"errors"
	"strings"

	"github.com/porterlabs/bucketlist/internal/shared"
)

// Severity classifies a report for presentation.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Report is the human-readable outcome of an operation.
type Report struct {
	Message  string
	Severity Severity
}

// Added reports a successful create, naming the record's identifying field.
func Added(name string) Report {
	return Report{Message: name + " has been added.", Severity: SeveritySuccess}
}

// Updated reports a successful update.
func Updated(name string) Report {
	return Report{Message: name + " has been updated.", Severity: SeveritySuccess}
}

// Deleted reports a successful delete.
func Deleted(name string) Report {
	return Report{Message: name + " has been deleted.", Severity: SeverityDanger}
}

// NotFound reports a lookup miss for the given entity word.
func NotFound(entity string) Report {
	return Report{Message: entity + " not found.", Severity: SeverityWarning}
}

// Conflict reports a uniqueness violation on the given field.
func Conflict(field string) Report {
	return Report{
		Message:  "This " + humanize(field) + " is already registered.",
		Severity: SeverityWarning,
	}
}

// FromError maps a repository error for the given entity word. Conflict and
// NotFound produce their warning reports; anything else falls through to a
// generic warning so store faults are never mislabeled as success.
func FromError(err error, entity string) Report {
	if field, ok := shared.ConflictField(err); ok {
		return Conflict(field)
	}
	if err == nil {
		return Report{}
	}
	if errors.Is(err, shared.ErrNotFound) {
		return NotFound(entity)
	}
	return Report{Message: "Something went wrong. Please try again.", Severity: SeverityWarning}
}

// Flash converts the report into a session flash message.
func (r Report) Flash() shared.FlashMessage {
	return shared.FlashMessage{Kind: string(r.Severity), Message: r.Message}
}

func humanize(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}
