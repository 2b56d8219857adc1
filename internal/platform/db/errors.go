package db

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/porterlabs/bucketlist/internal/shared"
)

// StoreTimeout bounds every individual store call.
const StoreTimeout = 5 * time.Second

// WithStoreTimeout derives a context with the per-call store deadline.
func WithStoreTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, StoreTimeout)
}

// Classify maps transport-level failures onto shared.ErrStoreUnavailable so
// callers can tell an unreachable store apart from a missing record. Row
// lookups must translate pgx.ErrNoRows themselves before calling Classify.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08: connection exception. Class 57: operator intervention
		// (shutdown). Both mean the store cannot serve this request.
		if strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57") {
			return fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
		}
	}
	if pgconn.Timeout(err) {
		return fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}
	return err
}

// UniqueViolationField maps a unique-constraint violation to the domain
// field named by the index. Returns "" when err is not a unique violation.
func UniqueViolationField(err error) string {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return ""
	}
	// Index naming convention: <table>_<field>_key.
	name := pgErr.ConstraintName
	parts := strings.Split(name, "_")
	if len(parts) < 3 {
		return name
	}
	return strings.Join(parts[1:len(parts)-1], "_")
}
