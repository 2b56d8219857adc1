package auth

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/porterlabs/bucketlist/internal/shared"
	"github.com/porterlabs/bucketlist/internal/view"
)

// Handler manages the login and logout endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	sessions  *shared.SessionManager
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, sessions: sessions, templates: templates, csrf: csrf}
}

// MountRoutes registers authentication routes. Both are reachable without a
// principal; a signed-in user re-submitting login simply rebinds the session.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.loginForm)
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
}

func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, map[string]any{
		"Next": SafeNext(r.URL.Query().Get("next")),
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	next := SafeNext(r.PostFormValue("next"))

	user, err := h.service.Authenticate(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, shared.ErrStoreUnavailable) {
			h.logger.Error("authenticate", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}
		if sess := shared.SessionFromContext(r.Context()); sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "danger", Message: "Wrong username or password."})
		}
		http.Redirect(w, r, "/login?next="+url.QueryEscape(next), http.StatusSeeOther)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	sess.SetUser(user.Username)
	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Logged in successfully!"})

	// Record the session for the audit table and the expiry purge job. A
	// failed insert is logged but does not block the login.
	id := h.sessions.EnsureID(sess)
	ip, _, _ := net.SplitHostPort(r.RemoteAddr)
	if err := h.service.RegisterSession(r.Context(), id, user.ID, time.Now().Add(h.sessions.TTL()), ip, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}

	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if sess.ID != "" {
			if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
				h.logger.Warn("remove session", slog.Any("error", err))
			}
		}
		h.sessions.Destroy(sess)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data map[string]any) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken := h.csrf.TokenFor(sess)
	var flash *shared.FlashMessage
	username := ""
	if sess != nil {
		flash = sess.PopFlash()
		username = sess.User()
	}
	viewData := view.TemplateData{
		Title:       "Login",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Username:    username,
		Data:        data,
	}
	if err := h.templates.Render(w, "pages/login.html", viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err))
	}
}
