package handlers

import (
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/sarthakdev/medium-be/internal/services"
)

// maxUploadSize bounds how much of a multipart body is held in memory.
const maxUploadSize = 10 << 20 // 10 MiB

// MediaHandler handles image upload passthrough requests.
type MediaHandler struct {
	service services.MediaServiceProvider
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(service services.MediaServiceProvider) *MediaHandler {
	return &MediaHandler{service: service}
}

// Upload accepts a multipart "image" field, forwards it to the media host,
// and relays the resulting URL and metadata.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "Image file is required")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Image file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		respondError(w, http.StatusInternalServerError, "Failed to upload image")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	result, err := h.service.UploadImage(r.Context(), contentType, data)
	if err != nil {
		log.Error().Err(err).Str("filename", header.Filename).Msg("Failed to upload image")
		respondError(w, http.StatusInternalServerError, "Failed to upload image")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"secure_url": result.SecureURL,
		"public_id":  result.PublicID,
		"width":      result.Width,
		"height":     result.Height,
		"format":     result.Format,
	})
}
