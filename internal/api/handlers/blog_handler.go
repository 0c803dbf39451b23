package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/sarthakdev/medium-be/internal/auth"
	"github.com/sarthakdev/medium-be/internal/models"
	"github.com/sarthakdev/medium-be/internal/services"
)

// BlogHandler handles HTTP requests for blog posts.
type BlogHandler struct {
	service services.PostServiceProvider
}

// NewBlogHandler creates a new BlogHandler.
func NewBlogHandler(service services.PostServiceProvider) *BlogHandler {
	return &BlogHandler{service: service}
}

// CreateBlogPayload defines the structure for post creation requests. Image
// and ImageID reference an asset on the external media host.
type CreateBlogPayload struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Published *bool  `json:"published"`
	Image     string `json:"image"`
	ImageID   string `json:"image_id"`
}

// UpdateBlogPayload defines the structure for partial post updates. Omitted
// fields keep their current value.
type UpdateBlogPayload struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// Create inserts a new post authored by the authenticated user. When image
// data is supplied the post and its image persist atomically.
func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload CreateBlogPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusLengthRequired, "Incorrect input formatting")
		return
	}
	if payload.Title == "" || payload.Content == "" {
		respondError(w, http.StatusLengthRequired, "Incorrect input formatting")
		return
	}

	userID, ok := auth.UserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	published := true
	if payload.Published != nil {
		published = *payload.Published
	}

	var image *models.Image
	if payload.Image != "" || payload.ImageID != "" {
		image = &models.Image{URL: payload.Image, PublicID: payload.ImageID}
	}

	blogID, err := h.service.CreatePost(r.Context(), models.Post{
		Title:     payload.Title,
		Content:   payload.Content,
		Published: published,
		AuthorID:  userID,
	}, image)
	if err != nil {
		log.Error().Err(err).Str("author_id", userID).Msg("Failed to create blog post")
		respondError(w, http.StatusInternalServerError, "Failed to create blog post")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"blogId": blogID})
}

// Update merges the supplied fields onto the existing post and persists the
// result. Only the author may update a post.
func (h *BlogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	post, err := h.service.GetPostByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondJSON(w, http.StatusNotFound, map[string]interface{}{
				"success": false,
				"error":   "Blog post not found",
			})
			return
		}
		log.Error().Err(err).Str("blog_id", id).Msg("Failed to load blog post")
		respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "Failed to update blog post",
		})
		return
	}

	userID, _ := auth.UserID(r.Context())
	if post.AuthorID != userID {
		respondJSON(w, http.StatusForbidden, map[string]interface{}{
			"success": false,
			"error":   "Only the author can update this post",
		})
		return
	}

	var payload UpdateBlogPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Invalid input",
			"details": map[string]string{"body": "must be a JSON object with optional title and content strings"},
		})
		return
	}
	if details := validateUpdate(payload); len(details) > 0 {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Invalid input",
			"details": details,
		})
		return
	}

	// Each omitted field keeps the existing value of that same field.
	title, content := post.Title, post.Content
	if payload.Title != nil {
		title = *payload.Title
	}
	if payload.Content != nil {
		content = *payload.Content
	}

	updated, err := h.service.UpdatePost(r.Context(), id, title, content)
	if err != nil {
		log.Error().Err(err).Str("blog_id", id).Msg("Failed to update blog post")
		respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "Failed to update blog post",
		})
		return
	}

	var authorName string
	if updated.Author != nil {
		authorName = updated.Author.Name
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Blog updated successfully",
		"blog": map[string]interface{}{
			"id":            updated.ID,
			"title":         updated.Title,
			"content":       updated.Content,
			"publishedDate": updated.CreatedAt.Format(time.RFC3339),
			"authorName":    authorName,
		},
	})
}

// List returns one fixed-size page of posts. An out-of-range page is an
// error, not an empty result; that shape is part of the documented contract.
func (h *BlogHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	posts, err := h.service.ListPosts(r.Context(), page)
	if err != nil {
		log.Error().Err(err).Int("page", page).Msg("Failed to fetch blog posts")
		respondError(w, http.StatusInternalServerError, "Failed to fetch blogs")
		return
	}
	if len(posts) == 0 {
		respondError(w, http.StatusNotFound, "No blogs found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"blogs": posts})
}

// Get returns a single post by id.
func (h *BlogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	post, err := h.service.GetPostByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Blog not found")
			return
		}
		log.Error().Err(err).Str("blog_id", id).Msg("Failed to fetch blog post")
		respondError(w, http.StatusInternalServerError, "Failed to fetch blog")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"blog": post})
}

// Delete removes a post. Only the author may delete it.
func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	post, err := h.service.GetPostByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondJSON(w, http.StatusNotFound, map[string]interface{}{
				"success": false,
				"error":   "Blog not found!",
			})
			return
		}
		log.Error().Err(err).Str("blog_id", id).Msg("Failed to load blog post")
		respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "Failed to delete blog. Please try again later.",
		})
		return
	}

	userID, _ := auth.UserID(r.Context())
	if post.AuthorID != userID {
		respondJSON(w, http.StatusForbidden, map[string]interface{}{
			"success": false,
			"error":   "Only the author can delete this post",
		})
		return
	}

	if err := h.service.DeletePost(r.Context(), id); err != nil {
		log.Error().Err(err).Str("blog_id", id).Msg("Failed to delete blog post")
		respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "Failed to delete blog. Please try again later.",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Blog post deleted successfully",
	})
}

// validateUpdate rejects fields that are present but empty.
func validateUpdate(payload UpdateBlogPayload) map[string]string {
	details := map[string]string{}
	if payload.Title != nil && *payload.Title == "" {
		details["title"] = "must not be empty when provided"
	}
	if payload.Content != nil && *payload.Content == "" {
		details["content"] = "must not be empty when provided"
	}
	return details
}
