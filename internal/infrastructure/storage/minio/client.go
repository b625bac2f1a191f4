// Package minio provides object storage backed by a MinIO (or any
// S3-compatible) endpoint, used to archive rendered analytics reports.
package minio

import (
	"context"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	appErrors "github.com/turtacn/patent-radar/pkg/errors"
	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/logging"
)

// Config holds MinIO connection settings.
type Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// DefaultBucket is used when no bucket is configured.
const DefaultBucket = "patent-reports"

// NewClient connects to the configured endpoint and ensures the report
// bucket exists.
func NewClient(ctx context.Context, cfg Config, log logging.Logger) (*minio.Client, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:9000"
	}
	if cfg.Bucket == "" {
		cfg.Bucket = DefaultBucket
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeReportArchiveFailed, "minio client init failed")
	}

	ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ensureCtx, cfg.Bucket)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeReportArchiveFailed, "minio bucket check failed")
	}
	if !exists {
		if err := client.MakeBucket(ensureCtx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeReportArchiveFailed, "minio bucket create failed")
		}
		log.Info("created report bucket", logging.String("bucket", cfg.Bucket))
	}

	log.Info("connected to minio",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", cfg.Bucket))
	return client, nil
}
