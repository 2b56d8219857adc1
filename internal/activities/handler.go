package activities

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/porterlabs/bucketlist/internal/auth"
	"github.com/porterlabs/bucketlist/internal/categories"
	"github.com/porterlabs/bucketlist/internal/outcome"
	"github.com/porterlabs/bucketlist/internal/rbac"
	"github.com/porterlabs/bucketlist/internal/shared"
	"github.com/porterlabs/bucketlist/internal/statuses"
	"github.com/porterlabs/bucketlist/internal/view"
)

// Handler manages activity endpoints. Category and status services feed the
// form dropdowns and the admin page.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	categories *categories.Service
	statuses   *statuses.Service
	templates  *view.Engine
	csrf       *shared.CSRFManager
	rbac       rbac.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, categorySvc *categories.Service, statusSvc *statuses.Service, templates *view.Engine, csrf *shared.CSRFManager, rbac rbac.Middleware) *Handler {
	return &Handler{
		logger:     logger,
		service:    service,
		categories: categorySvc,
		statuses:   statusSvc,
		templates:  templates,
		csrf:       csrf,
		rbac:       rbac,
	}
}

// MountRoutes registers activity routes. Viewing is open to every signed-in
// role; mutation needs contributor or admin; the admin page needs admin.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRole(auth.RoleUser, auth.RoleContributor, auth.RoleAdmin))
		r.Get("/activities", h.list)
		r.Post("/search", h.search)
		r.Get("/search-results", h.searchResults)
		r.Get("/activities/print-activity/{id}", h.printActivity)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRole(auth.RoleContributor, auth.RoleAdmin))
		r.Get("/activities/my-bucket-list", h.myBucketList)
		r.Get("/activities/new-activity", h.newForm)
		r.Post("/activities/add-activity", h.create)
		r.Get("/activities/edit-activity/{id}", h.editForm)
		r.Post("/activities/update-activity/{id}", h.update)
		r.Post("/activities/delete-activity/{id}", h.delete)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRole(auth.RoleAdmin))
		r.Get("/activities/activities", h.adminPage)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.List(r.Context())
	if err != nil {
		h.serverError(w, "list activities", err)
		return
	}
	h.render(w, r, "pages/activities.html", "Activities", map[string]any{
		"Activities": all,
	})
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	h.renderSearch(w, r, r.PostFormValue("search_string"))
}

func (h *Handler) searchResults(w http.ResponseWriter, r *http.Request) {
	h.renderSearch(w, r, r.URL.Query().Get("q"))
}

func (h *Handler) renderSearch(w http.ResponseWriter, r *http.Request, query string) {
	results, err := h.service.Search(r.Context(), query)
	if err != nil {
		h.serverError(w, "search activities", err)
		return
	}
	h.render(w, r, "pages/search-results.html", "Search Results", map[string]any{
		"SearchString": query,
		"Activities":   results,
	})
}

func (h *Handler) myBucketList(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	mine, err := h.service.ListByOwner(r.Context(), principal.Username)
	if err != nil {
		h.serverError(w, "list owned activities", err)
		return
	}
	h.render(w, r, "pages/my-bucket-list.html", "My Bucket List", map[string]any{
		"Activities": mine,
	})
}

func (h *Handler) adminPage(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.List(r.Context())
	if err != nil {
		h.serverError(w, "list activities", err)
		return
	}
	shareStatuses, err := h.statuses.List(r.Context())
	if err != nil {
		h.serverError(w, "list share statuses", err)
		return
	}
	h.render(w, r, "pages/activity-admin.html", "Activity Admin", map[string]any{
		"Activities": all,
		"Statuses":   shareStatuses,
	})
}

func (h *Handler) newForm(w http.ResponseWriter, r *http.Request) {
	options, ok := h.formOptions(w, r)
	if !ok {
		return
	}
	options["Form"] = Activity{}
	options["Errors"] = map[string]string{}
	h.render(w, r, "pages/new-activity.html", "New Activity", options)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	created, err := h.service.Create(r.Context(), principal.Username, formActivity(r))
	if err != nil {
		if errors.Is(err, shared.ErrStoreUnavailable) {
			h.serverError(w, "create activity", err)
			return
		}
		h.failForm(w, r, err, "Activity")
		return
	}
	h.redirectWithFlash(w, r, "/activities", outcome.Added(created.ActivityName))
}

func (h *Handler) editForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	activity, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrStoreUnavailable) {
			h.serverError(w, "load activity", err)
			return
		}
		h.redirectWithFlash(w, r, "/activities", outcome.FromError(err, "Activity"))
		return
	}
	options, ok := h.formOptions(w, r)
	if !ok {
		return
	}
	options["Form"] = activity
	options["Errors"] = map[string]string{}
	h.render(w, r, "pages/edit-activity.html", "Edit Activity", options)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	updated, err := h.service.Update(r.Context(), id, formActivity(r))
	if err != nil {
		if errors.Is(err, shared.ErrStoreUnavailable) {
			h.serverError(w, "update activity", err)
			return
		}
		h.redirectWithFlash(w, r, "/activities", outcome.FromError(err, "Activity"))
		return
	}
	h.redirectWithFlash(w, r, "/activities", outcome.Updated(updated.ActivityName))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrStoreUnavailable) {
			h.serverError(w, "delete activity", err)
			return
		}
		h.redirectWithFlash(w, r, "/activities", outcome.FromError(err, "Activity"))
		return
	}
	h.redirectWithFlash(w, r, "/activities", outcome.Deleted(deleted.ActivityName))
}

func (h *Handler) printActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	activity, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrStoreUnavailable) {
			h.serverError(w, "load activity", err)
			return
		}
		h.redirectWithFlash(w, r, "/activities", outcome.FromError(err, "Activity"))
		return
	}
	h.render(w, r, "pages/print-activity.html", activity.ActivityName, map[string]any{
		"Activity": activity,
	})
}

// formOptions loads the category and status dropdown contents. Reports a
// server error itself when the store fails.
func (h *Handler) formOptions(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	cats, err := h.categories.List(r.Context())
	if err != nil {
		h.serverError(w, "list categories", err)
		return nil, false
	}
	shareStatuses, err := h.statuses.List(r.Context())
	if err != nil {
		h.serverError(w, "list share statuses", err)
		return nil, false
	}
	return map[string]any{
		"Categories": cats,
		"Statuses":   shareStatuses,
	}, true
}

func formActivity(r *http.Request) NewActivity {
	return NewActivity{
		ActivityName:  r.PostFormValue("activity_name"),
		Category:      r.PostFormValue("category"),
		Description:   r.PostFormValue("description"),
		ShareStatus:   r.PostFormValue("share_status"),
		EstimatedCost: r.PostFormValue("estimated_cost"),
		Address:       r.PostFormValue("address"),
		City:          r.PostFormValue("city"),
		State:         r.PostFormValue("state"),
		Country:       r.PostFormValue("country"),
		ExpectedDate:  r.PostFormValue("expected_date"),
	}
}

func (h *Handler) failForm(w http.ResponseWriter, r *http.Request, err error, entity string) {
	h.redirectWithFlash(w, r, "/activities/new-activity", outcome.FromError(err, entity))
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) serverError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, slog.Any("error", err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template, title string, data map[string]any) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken := h.csrf.TokenFor(sess)
	var flash *shared.FlashMessage
	username := ""
	if sess != nil {
		flash = sess.PopFlash()
		username = sess.User()
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Username:    username,
		Data:        data,
	}
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err))
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location string, report outcome.Report) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(report.Flash())
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
