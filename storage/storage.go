// Package storage uploads avatar images to object storage. Two backends
// exist: Cloudflare R2 through the S3 API and Google Cloud Storage.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/princinho/shopitbackend/config"
	"github.com/princinho/shopitbackend/models"
)

// ObjectStorage is the collaborator the auth flow uses for avatars. The
// returned Avatar.PublicID is the key later passed to Delete.
type ObjectStorage interface {
	Upload(ctx context.Context, data []byte, contentType, folder string) (*models.Avatar, error)
	Delete(ctx context.Context, publicID string) error
}

var (
	ErrInvalidDataURL  = errors.New("invalid data url")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// New builds the backend selected by cfg.Provider.
func New(ctx context.Context, cfg config.StorageConfig) (ObjectStorage, error) {
	switch cfg.Provider {
	case "r2", "s3":
		return NewR2Client(ctx, cfg)
	case "gcs":
		return NewGCSClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown STORAGE_PROVIDER %q", cfg.Provider)
	}
}

// DecodeDataURL parses "data:[<mediatype>][;base64],<data>".
func DecodeDataURL(raw string) ([]byte, string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "data:") {
		return nil, "", ErrInvalidDataURL
	}
	meta, payload, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
	if !ok {
		return nil, "", ErrInvalidDataURL
	}

	isBase64 := strings.HasSuffix(meta, ";base64")
	meta = strings.TrimSuffix(meta, ";base64")
	contentType, _, _ := strings.Cut(meta, ";")
	if contentType == "" {
		contentType = "text/plain"
	}

	var data []byte
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
		}
		data = []byte(unescaped)
	}
	if len(data) == 0 {
		return nil, "", ErrInvalidDataURL
	}
	return data, strings.ToLower(contentType), nil
}

// ImageValidator checks size and sniffed MIME type of an upload.
type ImageValidator struct {
	allowedMime map[string]bool
	maxSize     int64
}

func NewImageValidator(allowed []string, maxSize int64) *ImageValidator {
	allowedMime := make(map[string]bool, len(allowed))
	for _, m := range allowed {
		if m = strings.TrimSpace(strings.ToLower(m)); m != "" {
			allowedMime[m] = true
		}
	}
	return &ImageValidator{allowedMime: allowedMime, maxSize: maxSize}
}

// Validate returns the sniffed content type. The declared type is not trusted.
func (v *ImageValidator) Validate(data []byte) (string, error) {
	if int64(len(data)) > v.maxSize {
		return "", fmt.Errorf("%w (max %d MB)", ErrFileTooLarge, v.maxSize>>20)
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	detected := strings.ToLower(http.DetectContentType(head))
	if !v.allowedMime[detected] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, detected)
	}
	return detected, nil
}

var extByType = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ObjectName builds a unique key under folder.
func ObjectName(folder, contentType string) string {
	ext, ok := extByType[contentType]
	if !ok {
		ext = ".bin"
	}
	return fmt.Sprintf("%s/%s%s", strings.Trim(folder, "/"), uuid.New().String(), ext)
}
