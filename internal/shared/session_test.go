package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porterlabs/bucketlist/internal/shared"
	_ "github.com/porterlabs/bucketlist/testing"
)

func newManager(t *testing.T) (*shared.SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "test_session", time.Hour, false), mr
}

func sessionCookie(t *testing.T, res *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range res.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

func TestSessionRoundTrip(t *testing.T) {
	sm, _ := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "", sess.User())

	sess.SetUser("porter33marcus")
	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, sess))

	cookie := sessionCookie(t, res, "test_session")
	require.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	// Second request with the cookie sees the stored user.
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookie)
	sess2, err := sm.Load(ctx, req2)
	require.NoError(t, err)
	assert.Equal(t, "porter33marcus", sess2.User())
}

func TestSessionExpiredRecordIsAnonymous(t *testing.T) {
	sm, mr := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, _ := sm.Load(ctx, req)
	sess.SetUser("porter33marcus")
	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, sess))
	cookie := sessionCookie(t, res, "test_session")

	// Simulate TTL expiry in Redis.
	mr.FastForward(2 * time.Hour)

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookie)
	sess2, err := sm.Load(ctx, req2)
	require.NoError(t, err)
	assert.Equal(t, "", sess2.User())
}

func TestSessionDestroyClearsCookieAndStore(t *testing.T) {
	sm, mr := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, _ := sm.Load(ctx, req)
	sess.SetUser("porter33marcus")
	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, sess))
	cookie := sessionCookie(t, res, "test_session")
	require.True(t, mr.Exists("session:"+cookie.Value))

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookie)
	sess2, _ := sm.Load(ctx, req2)
	sm.Destroy(sess2)

	res2 := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res2, sess2))
	cleared := sessionCookie(t, res2, "test_session")
	assert.Equal(t, "", cleared.Value)
	assert.Negative(t, cleared.MaxAge)
	assert.False(t, mr.Exists("session:"+cookie.Value))
}

func TestFlashIsOneTime(t *testing.T) {
	sm, _ := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, _ := sm.Load(ctx, req)
	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Skydiving has been added."})
	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, sess))
	cookie := sessionCookie(t, res, "test_session")

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookie)
	sess2, _ := sm.Load(ctx, req2)
	flash := sess2.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "success", flash.Kind)
	assert.Equal(t, "Skydiving has been added.", flash.Message)
	assert.Nil(t, sess2.PopFlash())
}

func TestEnsureIDStable(t *testing.T) {
	sm, _ := newManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, _ := sm.Load(context.Background(), req)
	id := sm.EnsureID(sess)
	require.NotEmpty(t, id)
	assert.Equal(t, id, sm.EnsureID(sess))

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(context.Background(), res, sess))
	assert.Equal(t, id, sessionCookie(t, res, "test_session").Value)
}
