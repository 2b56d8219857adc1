package statuses

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/porterlabs/bucketlist/internal/auth"
	"github.com/porterlabs/bucketlist/internal/outcome"
	"github.com/porterlabs/bucketlist/internal/rbac"
	"github.com/porterlabs/bucketlist/internal/shared"
)

// Handler manages share-status mutation endpoints. The status list is
// rendered by the activity admin page.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers status routes. Admin-only.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRole(auth.RoleAdmin))
		r.Post("/activities/add-share-status", h.create)
		r.Post("/activities/delete-share-status/{id}", h.delete)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	created, err := h.service.Create(r.Context(), r.PostFormValue("share_status"))
	if err != nil {
		if errors.Is(err, shared.ErrStoreUnavailable) {
			h.serverError(w, "create share status", err)
			return
		}
		h.redirectWithFlash(w, r, outcome.FromError(err, "Status"))
		return
	}
	h.redirectWithFlash(w, r, outcome.Added(created.ShareStatus))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrStoreUnavailable) {
			h.serverError(w, "delete share status", err)
			return
		}
		h.redirectWithFlash(w, r, outcome.FromError(err, "Status"))
		return
	}
	h.redirectWithFlash(w, r, outcome.Deleted(deleted.ShareStatus))
}

func (h *Handler) serverError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, slog.Any("error", err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, report outcome.Report) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(report.Flash())
	}
	http.Redirect(w, r, "/activities/activities", http.StatusSeeOther)
}
