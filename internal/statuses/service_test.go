package statuses

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porterlabs/bucketlist/internal/shared"
	_ "github.com/porterlabs/bucketlist/testing"
)

type fakeRepo struct {
	statuses map[int64]Status
	nextID   int64
	findErr  error
}

var _ Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{statuses: map[int64]Status{}, nextID: 1}
}

func (f *fakeRepo) List(ctx context.Context) ([]Status, error) {
	out := make([]Status, 0, len(f.statuses))
	for _, s := range f.statuses {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeRepo) FindByName(ctx context.Context, name string) (Status, error) {
	if f.findErr != nil {
		return Status{}, f.findErr
	}
	for _, s := range f.statuses {
		if s.ShareStatus == name {
			return s, nil
		}
	}
	return Status{}, shared.ErrNotFound
}

func (f *fakeRepo) Create(ctx context.Context, s Status) (Status, error) {
	s.ID = f.nextID
	f.nextID++
	f.statuses[s.ID] = s
	return s, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) (Status, error) {
	s, ok := f.statuses[id]
	if !ok {
		return Status{}, shared.ErrNotFound
	}
	delete(f.statuses, id)
	return s, nil
}

func TestCreateNormalizesToSentenceCase(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), "PUBLIC")
	require.NoError(t, err)
	assert.Equal(t, "Public", created.ShareStatus)
}

func TestCreateDuplicateConflicts(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	_, err := svc.Create(context.Background(), "Private")
	require.NoError(t, err)

	// Case variants normalize to the same label and conflict.
	_, err = svc.Create(context.Background(), "private")
	field, ok := shared.ConflictField(err)
	require.True(t, ok)
	assert.Equal(t, "share_status", field)
	assert.Len(t, repo.statuses, 1)
}

func TestCreateStoreFaultIsNotConflict(t *testing.T) {
	repo := newFakeRepo()
	repo.findErr = shared.ErrStoreUnavailable
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), "Private")
	assert.ErrorIs(t, err, shared.ErrStoreUnavailable)
	assert.False(t, shared.IsConflict(err))
}

func TestDeleteIdempotence(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	created, err := svc.Create(context.Background(), "Public")
	require.NoError(t, err)

	deleted, err := svc.Delete(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Public", deleted.ShareStatus)

	_, err = svc.Delete(context.Background(), created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
