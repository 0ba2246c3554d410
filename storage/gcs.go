package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/princinho/shopitbackend/config"
	"github.com/princinho/shopitbackend/models"
	"google.golang.org/api/option"
)

// GCSClient stores objects in a Google Cloud Storage bucket.
type GCSClient struct {
	Client  *gcs.Client
	Bucket  string
	Timeout time.Duration
}

// NewGCSClient uses the service account file at CREDENTIALS_FILE_LOCATION,
// or application default credentials when it is unset.
func NewGCSClient(ctx context.Context, cfg config.StorageConfig) (*GCSClient, error) {
	if cfg.GCSBucket == "" {
		return nil, errors.New("missing GCS_BUCKET env var")
	}

	var opts []option.ClientOption
	if cfg.GCSCredentials != "" {
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, cfg.GCSCredentials))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	return &GCSClient{Client: client, Bucket: cfg.GCSBucket, Timeout: cfg.Timeout}, nil
}

func (g *GCSClient) Upload(ctx context.Context, data []byte, contentType, folder string) (*models.Avatar, error) {
	ctx, cancel := withTimeout(ctx, g.Timeout)
	defer cancel()

	objectName := ObjectName(folder, contentType)
	w := g.Client.Bucket(g.Bucket).Object(objectName).If(gcs.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("upload write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("upload close: %w", err)
	}

	return &models.Avatar{
		PublicID: objectName,
		URL:      fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.Bucket, objectName),
	}, nil
}

// Delete treats an already missing object as deleted.
func (g *GCSClient) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	ctx, cancel := withTimeout(ctx, g.Timeout)
	defer cancel()

	err := g.Client.Bucket(g.Bucket).Object(publicID).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("delete %s: %w", publicID, err)
	}
	return nil
}

func (g *GCSClient) Close() error {
	return g.Client.Close()
}
