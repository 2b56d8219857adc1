package rbac

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/porterlabs/bucketlist/internal/auth"
)

// PrincipalResolver resolves the current principal for a request context.
type PrincipalResolver interface {
	CurrentPrincipal(ctx context.Context) (*auth.Principal, error)
}

// Middleware wires role authorization onto HTTP handlers. The guard runs
// before the wrapped handler, so no entity operation executes on a denied
// request.
type Middleware struct {
	Resolver PrincipalResolver
	Logger   *slog.Logger
}

// RequireRole gates a route on the allowed role set. Denied requests are
// redirected to the login page; a GET keeps its path as the next target.
func (m Middleware) RequireRole(allowed ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := m.Resolver.CurrentPrincipal(r.Context())
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("resolve principal", slog.Any("error", err))
				}
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			decision := RequireRole(principal, allowed...)
			if !decision.Allowed {
				redirectToLogin(w, r)
				return
			}
			ctx := auth.ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := "/login"
	if r.Method == http.MethodGet && r.URL.Path != "" {
		target += "?next=" + url.QueryEscape(r.URL.RequestURI())
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
