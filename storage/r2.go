package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/princinho/shopitbackend/config"
	"github.com/princinho/shopitbackend/models"
)

// R2Client stores objects in a Cloudflare R2 bucket via the S3 API.
type R2Client struct {
	S3           *s3.Client
	Bucket       string
	PublicDomain string
	Timeout      time.Duration
}

func NewR2Client(ctx context.Context, cfg config.StorageConfig) (*R2Client, error) {
	if cfg.R2Bucket == "" || cfg.R2AccessKey == "" || cfg.R2SecretKey == "" || cfg.R2Endpoint == "" {
		return nil, errors.New("missing R2 env vars (R2_BUCKET, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_ENDPOINT)")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.R2AccessKey, cfg.R2SecretKey, ""),
		),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("r2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.R2Endpoint)
		o.UsePathStyle = true
	})

	return &R2Client{
		S3:           client,
		Bucket:       cfg.R2Bucket,
		PublicDomain: strings.TrimRight(cfg.R2PublicDomain, "/"),
		Timeout:      cfg.Timeout,
	}, nil
}

func (r *R2Client) Upload(ctx context.Context, data []byte, contentType, folder string) (*models.Avatar, error) {
	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	key := ObjectName(folder, contentType)
	_, err := r.S3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("public, max-age=31536000"),
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	return &models.Avatar{PublicID: key, URL: r.publicURL(key)}, nil
}

func (r *R2Client) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	ctx, cancel := withTimeout(ctx, r.Timeout)
	defer cancel()

	_, err := r.S3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.Bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", publicID, err)
	}
	return nil
}

// publicURL follows the R2_PUBLIC_DOMAIN/<bucket>/<object> layout.
func (r *R2Client) publicURL(objectName string) string {
	return fmt.Sprintf("%s/%s/%s", r.PublicDomain, r.Bucket, objectName)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
