package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/psst/internal/apperror"
	"github.com/sakif/psst/internal/auth"
	"github.com/sakif/psst/internal/model"
	"github.com/sakif/psst/internal/repository"
	"github.com/sakif/psst/internal/service"
)

// PostService is the part of service.PostService the handlers use.
type PostService interface {
	List(ctx context.Context, filter repository.PostFilter) ([]model.Post, error)
	ListMentions(ctx context.Context, nick string) ([]model.Post, error)
	Add(ctx context.Context, nick, content string) (int64, error)
	GetUser(ctx context.Context, nick string) (*model.User, error)
}

var _ PostService = (*service.PostService)(nil)

// PageHandler serves the HTML pages and the new-post form.
type PageHandler struct {
	posts     PostService
	templates *Templates
	logger    *slog.Logger
}

// NewPageHandler creates a PageHandler.
func NewPageHandler(posts PostService, templates *Templates, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		posts:     posts,
		templates: templates,
		logger:    logger,
	}
}

// nickFrom returns the logged-in user set by auth.LoadUser.
func nickFrom(r *http.Request) (string, bool) {
	return auth.NickFromContext(r.Context())
}

// HandleHome serves the home page.
//
// HTTP: GET /
func (h *PageHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	h.renderHome(w, r, http.StatusOK, "")
}

// renderHome shows the latest posts, with flash as a notice above them.
// The login handler reuses it to report a failed login.
func (h *PageHandler) renderHome(w http.ResponseWriter, r *http.Request, status int, flash string) {
	posts, err := h.posts.List(r.Context(), repository.PostFilter{Limit: service.HomeTimelineLimit})
	if err != nil {
		h.templates.RenderError(w, r, http.StatusInternalServerError, "Could not load posts.")
		return
	}

	data := pageData{
		Title: "Psst!",
		Flash: flash,
		Posts: posts,
	}
	data.Nick, _ = nickFrom(r)
	h.templates.Render(w, status, "index", data)
}

// HandleUser serves a user's profile with their posts.
//
// HTTP: GET /users/{nick}
func (h *PageHandler) HandleUser(w http.ResponseWriter, r *http.Request) {
	nick := chi.URLParam(r, "nick")

	user, err := h.posts.GetUser(r.Context(), nick)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			h.templates.RenderError(w, r, http.StatusNotFound, "No such user: "+nick)
			return
		}
		h.logger.Error("failed to load user",
			slog.String("nick", nick),
			slog.String("error", err.Error()),
		)
		h.templates.RenderError(w, r, http.StatusInternalServerError, "Could not load user.")
		return
	}

	posts, err := h.posts.List(r.Context(), repository.PostFilter{Nick: nick})
	if err != nil {
		h.templates.RenderError(w, r, http.StatusInternalServerError, "Could not load posts.")
		return
	}

	data := pageData{
		Title: user.Nick + " | Psst!",
		User:  user,
		Posts: posts,
	}
	data.Nick, _ = nickFrom(r)
	h.templates.Render(w, http.StatusOK, "user", data)
}

// HandleMentions lists the posts that mention a user.
//
// HTTP: GET /mentions/{nick}
func (h *PageHandler) HandleMentions(w http.ResponseWriter, r *http.Request) {
	subject := chi.URLParam(r, "nick")

	posts, err := h.posts.ListMentions(r.Context(), subject)
	if err != nil {
		h.templates.RenderError(w, r, http.StatusInternalServerError, "Could not load posts.")
		return
	}

	data := pageData{
		Title:   "Mentions of @" + subject + " | Psst!",
		Subject: subject,
		Posts:   posts,
	}
	data.Nick, _ = nickFrom(r)
	h.templates.Render(w, http.StatusOK, "mentions", data)
}

// HandleAddPost stores a post from the logged-in user and returns to the
// home page. A blank post is ignored; one that is too long shows the home
// page again with the reason.
//
// HTTP: POST /post (form field "post")
// Auth: Required (auth.RequireUser)
func (h *PageHandler) HandleAddPost(w http.ResponseWriter, r *http.Request) {
	nick, ok := nickFrom(r)
	if !ok {
		h.HandleUnauthorized(w, r)
		return
	}

	content := r.PostFormValue("post")
	if strings.TrimSpace(content) == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if _, err := h.posts.Add(r.Context(), nick, content); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && errors.Is(err, apperror.ErrValidation) {
			h.renderHome(w, r, http.StatusBadRequest, appErr.Message)
			return
		}
		h.templates.RenderError(w, r, http.StatusInternalServerError, "Could not save your post.")
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleUnauthorized is what auth.RequireUser runs for anonymous requests.
func (h *PageHandler) HandleUnauthorized(w http.ResponseWriter, r *http.Request) {
	h.templates.RenderError(w, r, http.StatusUnauthorized, "You need to log in first.")
}

// HandleNotFound serves unknown paths.
func (h *PageHandler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	h.templates.RenderError(w, r, http.StatusNotFound, "There is nothing at "+r.URL.Path)
}
