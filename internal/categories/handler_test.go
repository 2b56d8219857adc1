package categories

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porterlabs/bucketlist/internal/auth"
	"github.com/porterlabs/bucketlist/internal/rbac"
	"github.com/porterlabs/bucketlist/internal/shared"
	"github.com/porterlabs/bucketlist/internal/view"
	_ "github.com/porterlabs/bucketlist/testing"
)

// adminResolver grants every request a fixed admin principal.
type adminResolver struct{}

func (adminResolver) CurrentPrincipal(ctx context.Context) (*auth.Principal, error) {
	return &auth.Principal{ID: 1, Username: "porter33marcus", Role: auth.RoleAdmin}, nil
}

func newHandlerRouter(t *testing.T, repo Repository) http.Handler {
	t.Helper()
	templates, err := view.NewEngine()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, NewService(repo), templates, shared.NewCSRFManager("csrfsecret"), rbac.Middleware{Resolver: adminResolver{}})

	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r
}

func postCategoryForm(router http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestCreateStoreFaultIsServerError(t *testing.T) {
	repo := newFakeRepo()
	repo.findErr = shared.ErrStoreUnavailable
	router := newHandlerRouter(t, repo)

	res := postCategoryForm(router, "/add-category", url.Values{"category_name": {"Nature"}})
	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Empty(t, res.Header().Get("Location"), "a store fault must not redirect")
	assert.Empty(t, repo.categories)
}

func TestCreateConflictStillRedirects(t *testing.T) {
	repo := newFakeRepo()
	router := newHandlerRouter(t, repo)

	res := postCategoryForm(router, "/add-category", url.Values{"category_name": {"Nature"}})
	assert.Equal(t, http.StatusSeeOther, res.Code)

	res = postCategoryForm(router, "/add-category", url.Values{"category_name": {"Nature"}})
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/admin/categories", res.Header().Get("Location"))
	assert.Len(t, repo.categories, 1)
}
