package services

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sarthakdev/medium-be/internal/config"
	"github.com/sarthakdev/medium-be/internal/models"
)

// MediaServiceProvider defines the interface for the media upload
// passthrough.
type MediaServiceProvider interface {
	UploadImage(ctx context.Context, contentType string, data []byte) (models.UploadResult, error)
}

// MediaService forwards image uploads to the external media host and records
// the resulting asset so it can later be attached to a post.
type MediaService struct {
	db     *sql.DB
	client *resty.Client
	cfg    config.CloudinaryConfig
	now    func() time.Time
}

// NewMediaService creates a new MediaService.
func NewMediaService(db *sql.DB, cfg config.CloudinaryConfig) *MediaService {
	return &MediaService{
		db:     db,
		client: resty.New().SetTimeout(30 * time.Second),
		cfg:    cfg,
		now:    time.Now,
	}
}

// UploadImage converts the file to a base64 data URI, signs the request, and
// forwards it to the media host. On success the relayed metadata is returned
// and the asset is recorded with no owning post; the sweeper reaps it if it
// is never attached.
func (s *MediaService) UploadImage(ctx context.Context, contentType string, data []byte) (models.UploadResult, error) {
	timestamp := s.now().Unix()
	dataURI := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))

	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"file":      dataURI,
			"api_key":   s.cfg.APIKey,
			"timestamp": strconv.FormatInt(timestamp, 10),
			"folder":    s.cfg.Folder,
			"signature": s.signature(timestamp),
		}).
		SetResult(&models.UploadResult{}).
		Post(fmt.Sprintf("%s/%s/image/upload", s.cfg.UploadBaseURL, s.cfg.CloudName))
	if err != nil {
		return models.UploadResult{}, fmt.Errorf("upload request: %w", err)
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		log.Error().
			Int("status", resp.StatusCode()).
			Str("body", string(resp.Body())).
			Msg("Media host rejected upload")
		return models.UploadResult{}, ErrUpstream
	}

	result := *resp.Result().(*models.UploadResult)
	s.recordAsset(ctx, result)
	return result, nil
}

// signature computes the upload signature the media host expects: a SHA-1
// over "folder=<f>&timestamp=<t>" directly followed by the API secret. The
// exact concatenation order is part of the external contract.
func (s *MediaService) signature(timestamp int64) string {
	toSign := fmt.Sprintf("folder=%s&timestamp=%d%s", s.cfg.Folder, timestamp, s.cfg.APISecret)
	sum := sha1.Sum([]byte(toSign))
	return hex.EncodeToString(sum[:])
}

// recordAsset bookkeeps the uploaded asset. The upload already succeeded
// upstream, so a failed insert is logged but does not fail the request.
func (s *MediaService) recordAsset(ctx context.Context, result models.UploadResult) {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO images (id, url, public_id) VALUES ($1, $2, $3)",
		uuid.New().String(), result.SecureURL, result.PublicID)
	if err != nil {
		log.Warn().Err(err).Str("public_id", result.PublicID).Msg("Failed to record uploaded asset")
	}
}
