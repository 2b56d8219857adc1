package categories

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
	"github.com/porterlabs/bucketlist/internal/view"
)

// Handler manages category administration endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      rbac.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, rbac: rbac}
}

// MountRoutes registers category routes. All of them are admin-only.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRole(auth.RoleAdmin))
		r.Get("/admin/categories", h.list)
		r.Post("/add-category", h.create)
		r.Get("/categories/edit-category/{id}", h.editForm)
		r.Post("/categories/update-category/{id}", h.update)
		r.Post("/categories/delete-category/{id}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.List(r.Context())
	if err != nil {
		h.serverError(w, "list categories", err)
		return
	}
	h.render(w, r, "pages/admin-categories.html", map[string]any{
		"Categories": all,
		"Errors":     map[string]string{},
	}, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	created, err := h.service.Create(r.Context(), r.PostFormValue("category_name"))
	if err != nil {
		if errors.Is(err, shared.ErrStoreUnavailable) {
			h.serverError(w, "create category", err)
			return
		}
		h.redirectWithFlash(w, r, "/admin/categories", outcome.FromError(err, "Category"))
		return
	}
	h.redirectWithFlash(w, r, "/admin/categories", outcome.Added(created.CategoryName))
}

func (h *Handler) editForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	category, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrStoreUnavailable) {
			h.serverError(w, "load category", err)
			return
		}
		h.redirectWithFlash(w, r, "/admin/categories", outcome.FromError(err, "Category"))
		return
	}
	h.render(w, r, "pages/edit-category.html", map[string]any{
		"Category": category,
		"Errors":   map[string]string{},
	}, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	updated, err := h.service.Update(r.Context(), id, r.PostFormValue("category_name"))
	if err != nil {
		if errors.Is(err, shared.ErrStoreUnavailable) {
			h.serverError(w, "update category", err)
			return
		}
		h.redirectWithFlash(w, r, "/admin/categories", outcome.FromError(err, "Category"))
		return
	}
	h.redirectWithFlash(w, r, "/admin/categories", outcome.Updated(updated.CategoryName))
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
			h.serverError(w, "delete category", err)
			return
		}
		h.redirectWithFlash(w, r, "/admin/categories", outcome.FromError(err, "Category"))
		return
	}
	h.redirectWithFlash(w, r, "/admin/categories", outcome.Deleted(deleted.CategoryName))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken := h.csrf.TokenFor(sess)
	var flash *shared.FlashMessage
	username := ""
	if sess != nil {
		flash = sess.PopFlash()
		username = sess.User()
	}
	viewData := view.TemplateData{
		Title:       "Categories",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Username:    username,
		Data:        data,
	}
	w.WriteHeader(status)
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err))
	}
}

func (h *Handler) serverError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, slog.Any("error", err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location string, report outcome.Report) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(report.Flash())
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
