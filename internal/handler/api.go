package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/psst/internal/apperror"
	"github.com/sakif/psst/internal/auth"
	"github.com/sakif/psst/internal/model"
	"github.com/sakif/psst/internal/render"
	"github.com/sakif/psst/internal/repository"
)

// APIHandler serves posts as JSON.
type APIHandler struct {
	posts  PostService
	logger *slog.Logger
}

// NewAPIHandler creates an APIHandler.
func NewAPIHandler(posts PostService, logger *slog.Logger) *APIHandler {
	return &APIHandler{posts: posts, logger: logger}
}

// PostResponse is a post as the API returns it: the stored fields plus the
// rendered HTML body.
type PostResponse struct {
	model.Post
	HTML string `json:"html"`
}

func toResponses(posts []model.Post) []PostResponse {
	out := make([]PostResponse, len(posts))
	for i, p := range posts {
		out[i] = PostResponse{Post: p, HTML: render.ToHTML(p.Content)}
	}
	return out
}

// HandleListPosts returns posts newest-first.
//
// HTTP: GET /api/posts?user=NICK&limit=N
//
// Both parameters are optional. limit must be a non-negative integer;
// 0 or absent means no limit.
func (h *APIHandler) HandleListPosts(w http.ResponseWriter, r *http.Request) {
	filter := repository.PostFilter{Nick: r.URL.Query().Get("user")}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, apperror.ValidationFailed("limit", "limit must be a non-negative integer"))
			return
		}
		filter.Limit = limit
	}

	posts, err := h.posts.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponses(posts))
}

// HandleListMentions returns the posts that mention a user, newest-first.
//
// HTTP: GET /api/mentions/{nick}
func (h *APIHandler) HandleListMentions(w http.ResponseWriter, r *http.Request) {
	nick := chi.URLParam(r, "nick")

	posts, err := h.posts.ListMentions(r.Context(), nick)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponses(posts))
}

// CreatePostRequest is the body of POST /api/posts.
type CreatePostRequest struct {
	Content string `json:"content"`
}

// CreatePostResponse carries the id of the stored post.
type CreatePostResponse struct {
	ID int64 `json:"id"`
}

// HandleCreatePost stores a post by the logged-in user.
//
// HTTP: POST /api/posts {"content": "..."}
// Auth: Required (auth.RequireUser with HandleUnauthorized)
//
// 201 with the new id; 400 for a bad body, blank content or content over
// the length limit; 401 when nobody is logged in.
func (h *APIHandler) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	nick, ok := auth.NickFromContext(r.Context())
	if !ok {
		h.HandleUnauthorized(w, r)
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid post JSON", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "request body must be JSON"))
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, apperror.ValidationFailed("content", "post must not be empty"))
		return
	}

	id, err := h.posts.Add(r.Context(), nick, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreatePostResponse{ID: id})
}

// HandleUnauthorized answers API requests that need a logged-in user.
func (h *APIHandler) HandleUnauthorized(w http.ResponseWriter, r *http.Request) {
	writeError(w, apperror.Unauthorized("you need to log in first"))
}
