package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/porterlabs/bucketlist/internal/auth"
	"github.com/porterlabs/bucketlist/internal/outcome"
	"github.com/porterlabs/bucketlist/internal/rbac"
	"github.com/porterlabs/bucketlist/internal/shared"
	"github.com/porterlabs/bucketlist/internal/view"
)

// Handler manages registration, account and user-admin endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, rbac rbac.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		csrf:      csrf,
		rbac:      rbac,
		validator: validator.New(),
	}
}

// MountRoutes registers user routes on the root router.
func (h *Handler) MountRoutes(r chi.Router) {
	// Public registration.
	r.Get("/register", h.showRegister)
	r.Post("/add-user", h.register)

	// Own account, any authenticated role.
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRole(auth.RoleUser, auth.RoleContributor, auth.RoleAdmin))
		r.Get("/my-account/{id}", h.myAccount)
		r.Post("/update-myaccount/{id}", h.updateMyAccount)
	})

	// User administration.
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRole(auth.RoleAdmin))
		r.Get("/admin/users", h.adminUsers)
		r.Post("/admin/add-user", h.adminAddUser)
		r.Get("/admin/edit-user/{id}", h.adminEditUser)
		r.Post("/admin/update-user/{id}", h.adminUpdateUser)
		r.Post("/admin/delete-user/{id}", h.adminDeleteUser)
	})
}

type registerForm struct {
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
	Username  string `validate:"required,min=3"`
	Email     string `validate:"required,email"`
	Password  string `validate:"required,min=8"`
	Role      string `validate:"required"`
}

type formErrors map[string]string

func (h *Handler) showRegister(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/register.html", map[string]any{
		"Form":   registerForm{},
		"Errors": formErrors{},
		"Roles":  auth.Roles(),
	}, http.StatusOK)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := registerForm{
		FirstName: r.PostFormValue("first_name"),
		LastName:  r.PostFormValue("last_name"),
		Username:  r.PostFormValue("username"),
		Email:     r.PostFormValue("email"),
		Password:  r.PostFormValue("password"),
		Role:      r.PostFormValue("role"),
	}

	errs := formErrors{}
	if err := h.validator.Struct(form); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			errs[fieldErr.Field()] = "Please provide a valid " + fieldErr.Field() + "."
		}
	}
	role, ok := auth.ParseRole(form.Role)
	if !ok {
		errs["Role"] = "Please choose a valid role."
	}
	if len(errs) > 0 {
		h.render(w, r, "pages/register.html", map[string]any{
			"Form":   form,
			"Errors": errs,
			"Roles":  auth.Roles(),
		}, http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), NewUser{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Username:  form.Username,
		Email:     form.Email,
		Password:  form.Password,
		Role:      role,
	})
	if err != nil {
		if errors.Is(err, shared.ErrStoreUnavailable) {
			h.serverError(w, "register user", err)
			return
		}
		report := outcome.FromError(err, "User")
		h.logger.Warn("register user", slog.Any("error", err))
		h.render(w, r, "pages/register.html", map[string]any{
			"Form":   form,
			"Errors": formErrors{"general": report.Message},
			"Roles":  auth.Roles(),
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/login", outcome.Added(created.Username))
}

func (h *Handler) myAccount(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || principal == nil || principal.ID != id {
		h.redirectWithFlash(w, r, "/", outcome.NotFound("User"))
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrStoreUnavailable) {
			h.serverError(w, "load account", err)
			return
		}
		h.redirectWithFlash(w, r, "/", outcome.FromError(err, "User"))
		return
	}
	h.render(w, r, "pages/my-account.html", map[string]any{
		"User":   user,
		"Errors": formErrors{},
	}, http.StatusOK)
}

func (h *Handler) updateMyAccount(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || principal == nil || principal.ID != id {
		h.redirectWithFlash(w, r, "/", outcome.NotFound("User"))
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	// Role and username are not self-service; both stay as stored.
	updated, err := h.service.Update(r.Context(), id, UserUpdate{
		FirstName: r.PostFormValue("first_name"),
		LastName:  r.PostFormValue("last_name"),
		Username:  principal.Username,
		Email:     r.PostFormValue("email"),
		Password:  r.PostFormValue("password"),
		Role:      principal.Role,
	})
	if err != nil {
		if errors.Is(err, shared.ErrStoreUnavailable) {
			h.serverError(w, "update account", err)
			return
		}
		h.redirectWithFlash(w, r, "/my-account/"+chi.URLParam(r, "id"), outcome.FromError(err, "User"))
		return
	}
	h.redirectWithFlash(w, r, "/my-account/"+chi.URLParam(r, "id"), outcome.Updated(updated.Username))
}

func (h *Handler) adminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		h.serverError(w, "list users", err)
		return
	}
	h.render(w, r, "pages/user-admin.html", map[string]any{
		"Users":  users,
		"Roles":  auth.Roles(),
		"Errors": formErrors{},
	}, http.StatusOK)
}

func (h *Handler) adminAddUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	role, _ := auth.ParseRole(r.PostFormValue("role"))
	created, err := h.service.Create(r.Context(), NewUser{
		FirstName: r.PostFormValue("first_name"),
		LastName:  r.PostFormValue("last_name"),
		Username:  r.PostFormValue("username"),
		Email:     r.PostFormValue("email"),
		Password:  r.PostFormValue("password"),
		Role:      role,
	})
	if err != nil {
		if errors.Is(err, shared.ErrStoreUnavailable) {
			h.serverError(w, "create user", err)
			return
		}
		h.redirectWithFlash(w, r, "/admin/users", outcome.FromError(err, "User"))
		return
	}
	h.redirectWithFlash(w, r, "/admin/users", outcome.Added(created.Username))
}

func (h *Handler) adminEditUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrStoreUnavailable) {
			h.serverError(w, "load user", err)
			return
		}
		h.redirectWithFlash(w, r, "/admin/users", outcome.FromError(err, "User"))
		return
	}
	h.render(w, r, "pages/edit-user.html", map[string]any{
		"User":   user,
		"Errors": formErrors{},
	}, http.StatusOK)
}

func (h *Handler) adminUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	role, _ := auth.ParseRole(r.PostFormValue("role"))
	updated, err := h.service.Update(r.Context(), id, UserUpdate{
		FirstName: r.PostFormValue("first_name"),
		LastName:  r.PostFormValue("last_name"),
		Username:  r.PostFormValue("username"),
		Email:     r.PostFormValue("email"),
		Password:  r.PostFormValue("password"),
		Role:      role,
	})
	if err != nil {
		if errors.Is(err, shared.ErrStoreUnavailable) {
			h.serverError(w, "update user", err)
			return
		}
		h.redirectWithFlash(w, r, "/admin/users", outcome.FromError(err, "User"))
		return
	}
	h.redirectWithFlash(w, r, "/admin/users", outcome.Updated(updated.Username))
}

func (h *Handler) adminDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrStoreUnavailable) {
			h.serverError(w, "delete user", err)
			return
		}
		h.redirectWithFlash(w, r, "/admin/users", outcome.FromError(err, "User"))
		return
	}
	h.redirectWithFlash(w, r, "/admin/users", outcome.Deleted(deleted.Username))
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
		Title:       "Users",
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
