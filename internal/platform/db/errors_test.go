package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/porterlabs/bucketlist/internal/shared"
)

func TestClassifyNil(t *testing.T) {
	assert.NoError(t, Classify(nil))
}

func TestClassifyDeadlineIsStoreUnavailable(t *testing.T) {
	err := Classify(fmt.Errorf("query: %w", context.DeadlineExceeded))
	assert.ErrorIs(t, err, shared.ErrStoreUnavailable)
}

func TestClassifyConnectionExceptionIsStoreUnavailable(t *testing.T) {
	err := Classify(&pgconn.PgError{Code: "08006"})
	assert.ErrorIs(t, err, shared.ErrStoreUnavailable)
}

func TestClassifyShutdownIsStoreUnavailable(t *testing.T) {
	err := Classify(&pgconn.PgError{Code: "57P01"})
	assert.ErrorIs(t, err, shared.ErrStoreUnavailable)
}

func TestClassifyLeavesOtherErrorsAlone(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	assert.Equal(t, error(unique), Classify(unique))

	plain := errors.New("boom")
	assert.Equal(t, plain, Classify(plain))
}

func TestUniqueViolationField(t *testing.T) {
	cases := []struct {
		constraint string
		want       string
	}{
		{"users_username_key", "username"},
		{"users_email_key", "email"},
		{"categories_category_name_key", "category_name"},
		{"statuses_share_status_key", "share_status"},
	}
	for _, tc := range cases {
		err := &pgconn.PgError{Code: "23505", ConstraintName: tc.constraint}
		assert.Equal(t, tc.want, UniqueViolationField(err), tc.constraint)
	}
}

func TestUniqueViolationFieldIgnoresOtherCodes(t *testing.T) {
	assert.Empty(t, UniqueViolationField(&pgconn.PgError{Code: "23503", ConstraintName: "activities_username_fkey"}))
	assert.Empty(t, UniqueViolationField(errors.New("not a pg error")))
	assert.Empty(t, UniqueViolationField(nil))
}
