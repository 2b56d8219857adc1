package app

import (
	"io/fs"
	"log"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/porterlabs/bucketlist/internal/activities"
	"github.com/porterlabs/bucketlist/internal/auth"
	"github.com/porterlabs/bucketlist/internal/categories"
	"github.com/porterlabs/bucketlist/internal/shared"
	"github.com/porterlabs/bucketlist/internal/statuses"
	"github.com/porterlabs/bucketlist/internal/users"
	"github.com/porterlabs/bucketlist/internal/view"
	"github.com/porterlabs/bucketlist/web"
)

func init() {
	ensureMimeType(".css", "text/css; charset=utf-8")
}

func ensureMimeType(ext, typ string) {
	if mime.TypeByExtension(ext) != "" {
		return
	}
	if err := mime.AddExtensionType(ext, typ); err != nil {
		log.Printf("app: failed to register MIME type for %s: %v", ext, err)
	}
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	AuthHandler       *auth.Handler
	UsersHandler      *users.Handler
	CategoriesHandler *categories.Handler
	StatusesHandler   *statuses.Handler
	ActivitiesHandler *activities.Handler
}

// NewRouter constructs the chi.Router for the site. Handlers mount at the
// root because their paths already carry their own prefixes.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", params.renderPage("pages/index.html", "Bucket List"))
	r.Get("/about", params.renderPage("pages/about.html", "About"))

	params.AuthHandler.MountRoutes(r)
	params.UsersHandler.MountRoutes(r)
	params.CategoriesHandler.MountRoutes(r)
	params.StatusesHandler.MountRoutes(r)
	params.ActivitiesHandler.MountRoutes(r)

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// renderPage serves a static template with the common chrome filled in.
func (p RouterParams) renderPage(template, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		csrfToken := p.CSRFManager.TokenFor(sess)
		var flash *shared.FlashMessage
		username := ""
		if sess != nil {
			flash = sess.PopFlash()
			username = sess.User()
		}
		data := view.TemplateData{
			Title:       title,
			CSRFToken:   csrfToken,
			Flash:       flash,
			CurrentPath: r.URL.Path,
			Username:    username,
		}
		if err := p.Templates.Render(w, template, data); err != nil {
			p.Logger.Error("render page", slog.String("template", template), slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

// staticCacheHandler wraps a file server with a one hour Cache-Control.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
