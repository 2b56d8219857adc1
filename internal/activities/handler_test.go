package activities_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porterlabs/bucketlist/internal/activities"
	"github.com/porterlabs/bucketlist/internal/auth"
	"github.com/porterlabs/bucketlist/internal/categories"
	"github.com/porterlabs/bucketlist/internal/rbac"
	"github.com/porterlabs/bucketlist/internal/shared"
	"github.com/porterlabs/bucketlist/internal/statuses"
	"github.com/porterlabs/bucketlist/internal/view"
	_ "github.com/porterlabs/bucketlist/testing"
)

// roleResolver maps session usernames onto principals without a database.
type roleResolver struct {
	roles map[string]auth.Role
}

func (r *roleResolver) CurrentPrincipal(ctx context.Context) (*auth.Principal, error) {
	sess := shared.SessionFromContext(ctx)
	if sess == nil || sess.User() == "" {
		return nil, nil
	}
	role, ok := r.roles[sess.User()]
	if !ok {
		return nil, nil
	}
	return &auth.Principal{ID: 1, Username: sess.User(), Role: role}, nil
}

type memCategoryRepo struct{ items []categories.Category }

func (m *memCategoryRepo) List(ctx context.Context) ([]categories.Category, error) {
	return m.items, nil
}
func (m *memCategoryRepo) Get(ctx context.Context, id int64) (categories.Category, error) {
	return categories.Category{}, shared.ErrNotFound
}
func (m *memCategoryRepo) FindByName(ctx context.Context, name string) (categories.Category, error) {
	return categories.Category{}, shared.ErrNotFound
}
func (m *memCategoryRepo) Create(ctx context.Context, c categories.Category) (categories.Category, error) {
	m.items = append(m.items, c)
	return c, nil
}
func (m *memCategoryRepo) Update(ctx context.Context, id int64, c categories.Category) error {
	return shared.ErrNotFound
}
func (m *memCategoryRepo) Delete(ctx context.Context, id int64) (categories.Category, error) {
	return categories.Category{}, shared.ErrNotFound
}

type memStatusRepo struct{ items []statuses.Status }

func (m *memStatusRepo) List(ctx context.Context) ([]statuses.Status, error) {
	return m.items, nil
}
func (m *memStatusRepo) FindByName(ctx context.Context, name string) (statuses.Status, error) {
	return statuses.Status{}, shared.ErrNotFound
}
func (m *memStatusRepo) Create(ctx context.Context, s statuses.Status) (statuses.Status, error) {
	m.items = append(m.items, s)
	return s, nil
}
func (m *memStatusRepo) Delete(ctx context.Context, id int64) (statuses.Status, error) {
	return statuses.Status{}, shared.ErrNotFound
}

type memActivityRepo struct {
	activities map[int64]activities.Activity
	nextID     int64
	storeErr   error
}

func newMemActivityRepo() *memActivityRepo {
	return &memActivityRepo{activities: map[int64]activities.Activity{}, nextID: 1}
}

func (m *memActivityRepo) List(ctx context.Context) ([]activities.Activity, error) {
	var out []activities.Activity
	for _, a := range m.activities {
		out = append(out, a)
	}
	return out, nil
}

func (m *memActivityRepo) ListByOwner(ctx context.Context, username string) ([]activities.Activity, error) {
	var out []activities.Activity
	for _, a := range m.activities {
		if a.Username == username {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memActivityRepo) Search(ctx context.Context, query string) ([]activities.Activity, error) {
	var out []activities.Activity
	for _, a := range m.activities {
		if strings.Contains(strings.ToLower(a.ActivityName), strings.ToLower(query)) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memActivityRepo) Get(ctx context.Context, id int64) (activities.Activity, error) {
	a, ok := m.activities[id]
	if !ok {
		return activities.Activity{}, shared.ErrNotFound
	}
	return a, nil
}

func (m *memActivityRepo) Create(ctx context.Context, a activities.Activity) (activities.Activity, error) {
	if m.storeErr != nil {
		return activities.Activity{}, m.storeErr
	}
	now := time.Now()
	a.ID = m.nextID
	a.DateAdded = now
	a.DateModified = now
	m.nextID++
	m.activities[a.ID] = a
	return a, nil
}

func (m *memActivityRepo) Update(ctx context.Context, id int64, a activities.Activity) error {
	current, ok := m.activities[id]
	if !ok {
		return shared.ErrNotFound
	}
	a.ID = id
	a.Username = current.Username
	a.DateAdded = current.DateAdded
	a.DateModified = time.Now()
	m.activities[id] = a
	return nil
}

func (m *memActivityRepo) Delete(ctx context.Context, id int64) (activities.Activity, error) {
	if m.storeErr != nil {
		return activities.Activity{}, m.storeErr
	}
	a, ok := m.activities[id]
	if !ok {
		return activities.Activity{}, shared.ErrNotFound
	}
	delete(m.activities, id)
	return a, nil
}

type testSite struct {
	router   http.Handler
	sessions *shared.SessionManager
	repo     *memActivityRepo
}

func newTestSite(t *testing.T, roles map[string]auth.Role) *testSite {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(client, "test_session", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	templates, err := view.NewEngine()
	require.NoError(t, err)

	repo := newMemActivityRepo()
	svc := activities.NewService(repo)
	categorySvc := categories.NewService(&memCategoryRepo{})
	statusSvc := statuses.NewService(&memStatusRepo{})
	middleware := rbac.Middleware{Resolver: &roleResolver{roles: roles}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := activities.NewHandler(logger, svc, categorySvc, statusSvc, templates, csrfManager, middleware)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()
			sess, err := sessionManager.Load(ctx, req)
			require.NoError(t, err)
			ctx = shared.ContextWithSession(ctx, sess)
			next.ServeHTTP(w, req.WithContext(ctx))
			require.NoError(t, sessionManager.Commit(ctx, w, sess))
		})
	})
	handler.MountRoutes(r)

	return &testSite{router: r, sessions: sessionManager, repo: repo}
}

// signIn returns a cookie for a committed session bound to username.
func (s *testSite) signIn(t *testing.T, username string) *http.Cookie {
	t.Helper()
	sess, err := s.sessions.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetUser(username)
	res := httptest.NewRecorder()
	require.NoError(t, s.sessions.Commit(context.Background(), res, sess))
	for _, c := range res.Result().Cookies() {
		if c.Name == "test_session" {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

// flashFor drains the queued flashes and returns the newest one. The reads
// here never persist the pop, so earlier flashes can linger in Redis.
func (s *testSite) flashFor(t *testing.T, cookie *http.Cookie) *shared.FlashMessage {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	sess, err := s.sessions.Load(context.Background(), req)
	require.NoError(t, err)
	var last *shared.FlashMessage
	for msg := sess.PopFlash(); msg != nil; msg = sess.PopFlash() {
		last = msg
	}
	return last
}

func postForm(router http.Handler, cookie *http.Cookie, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestAnonymousMutationRedirectsToLogin(t *testing.T) {
	site := newTestSite(t, map[string]auth.Role{})

	res := postForm(site.router, nil, "/activities/delete-activity/1", url.Values{})
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/login", res.Header().Get("Location"))
}

func TestUserRoleCannotMutate(t *testing.T) {
	site := newTestSite(t, map[string]auth.Role{"viewer": auth.RoleUser})
	seeded, err := site.repo.Create(context.Background(), activities.Activity{ActivityName: "Skydiving", Username: "porter33marcus"})
	require.NoError(t, err)

	cookie := site.signIn(t, "viewer")
	res := postForm(site.router, cookie, "/activities/delete-activity/1", url.Values{})
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/login", res.Header().Get("Location"))

	_, err = site.repo.Get(context.Background(), seeded.ID)
	assert.NoError(t, err, "denied request must not touch the record")
}

func TestContributorDeleteFlashesThenNotFound(t *testing.T) {
	site := newTestSite(t, map[string]auth.Role{"porter33marcus": auth.RoleContributor})
	_, err := site.repo.Create(context.Background(), activities.Activity{ActivityName: "Skydiving", Username: "porter33marcus"})
	require.NoError(t, err)

	cookie := site.signIn(t, "porter33marcus")
	res := postForm(site.router, cookie, "/activities/delete-activity/1", url.Values{})
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/activities", res.Header().Get("Location"))

	flash := site.flashFor(t, cookie)
	require.NotNil(t, flash)
	assert.Equal(t, "danger", flash.Kind)
	assert.Equal(t, "Skydiving has been deleted.", flash.Message)

	// Deleting again misses and reports a warning instead.
	res = postForm(site.router, cookie, "/activities/delete-activity/1", url.Values{})
	assert.Equal(t, http.StatusSeeOther, res.Code)

	flash = site.flashFor(t, cookie)
	require.NotNil(t, flash)
	assert.Equal(t, "warning", flash.Kind)
	assert.Equal(t, "Activity not found.", flash.Message)
}

func TestStoreFaultOnMutationIsServerError(t *testing.T) {
	site := newTestSite(t, map[string]auth.Role{"porter33marcus": auth.RoleContributor})
	_, err := site.repo.Create(context.Background(), activities.Activity{ActivityName: "Skydiving", Username: "porter33marcus"})
	require.NoError(t, err)
	site.repo.storeErr = shared.ErrStoreUnavailable

	cookie := site.signIn(t, "porter33marcus")

	// An unreachable store fails the request outright instead of being
	// reported like a missing record.
	res := postForm(site.router, cookie, "/activities/delete-activity/1", url.Values{})
	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Empty(t, res.Header().Get("Location"))
	assert.Nil(t, site.flashFor(t, cookie))

	res = postForm(site.router, cookie, "/activities/add-activity", url.Values{
		"activity_name": {"Caving"},
	})
	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Nil(t, site.flashFor(t, cookie))
}

func TestContributorAddStampsOwner(t *testing.T) {
	site := newTestSite(t, map[string]auth.Role{"porter33marcus": auth.RoleContributor})
	cookie := site.signIn(t, "porter33marcus")

	res := postForm(site.router, cookie, "/activities/add-activity", url.Values{
		"activity_name": {"Skydiving"},
		"category":      {"Adrenaline rush"},
		"share_status":  {"Public"},
	})
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/activities", res.Header().Get("Location"))

	stored, err := site.repo.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "porter33marcus", stored.Username)

	flash := site.flashFor(t, cookie)
	require.NotNil(t, flash)
	assert.Equal(t, "success", flash.Kind)
	assert.Equal(t, "Skydiving has been added.", flash.Message)
}

func TestGetDeniedKeepsNextTarget(t *testing.T) {
	site := newTestSite(t, map[string]auth.Role{})

	req := httptest.NewRequest(http.MethodGet, "/activities/my-bucket-list", nil)
	res := httptest.NewRecorder()
	site.router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/login?next="+url.QueryEscape("/activities/my-bucket-list"), res.Header().Get("Location"))
}

func TestAuthenticatedListRenders(t *testing.T) {
	site := newTestSite(t, map[string]auth.Role{"viewer": auth.RoleUser})
	_, err := site.repo.Create(context.Background(), activities.Activity{ActivityName: "Skydiving", Username: "porter33marcus"})
	require.NoError(t, err)

	cookie := site.signIn(t, "viewer")
	req := httptest.NewRequest(http.MethodGet, "/activities", nil)
	req.AddCookie(cookie)
	res := httptest.NewRecorder()
	site.router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "Skydiving")
}
