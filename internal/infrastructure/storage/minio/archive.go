package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/patent-radar/internal/application/analytics"
	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/patent-radar/pkg/errors"
)

// objectStore is the subset of the MinIO client the archive needs,
// narrowed for stubbing in tests.
type objectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Archive stores rendered analytics reports as objects under a single
// bucket. Object names are supplied by the caller and already carry a
// timestamped prefix.
type Archive struct {
	store  objectStore
	bucket string
	logger logging.Logger
}

var _ analytics.ReportArchive = (*Archive)(nil)

// NewArchive builds a report archive over the given client. An empty
// bucket falls back to DefaultBucket.
func NewArchive(client *minio.Client, bucket string, log logging.Logger) *Archive {
	if bucket == "" {
		bucket = DefaultBucket
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Archive{store: client, bucket: bucket, logger: log.Named("report-archive")}
}

// Store uploads the payload and returns the bucket-qualified object path.
func (a *Archive) Store(ctx context.Context, name string, contentType string, payload []byte) (string, error) {
	if name == "" {
		return "", appErrors.New(appErrors.ErrCodeReportArchiveFailed, "report name is empty")
	}

	_, err := a.store.PutObject(ctx, a.bucket, name, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrCodeReportArchiveFailed, "report upload failed")
	}

	path := fmt.Sprintf("%s/%s", a.bucket, name)
	a.logger.Debug("archived report",
		logging.String("path", path),
		logging.Int("bytes", len(payload)))
	return path, nil
}
