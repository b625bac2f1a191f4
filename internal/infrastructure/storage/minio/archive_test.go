package minio

import (
	"context"
	"errors"
	"io"
	"testing"

	miniosdk "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/patent-radar/pkg/errors"
)

type stubStore struct {
	bucket      string
	object      string
	contentType string
	payload     []byte
	err         error
}

func (s *stubStore) PutObject(_ context.Context, bucketName, objectName string, reader io.Reader, _ int64, opts miniosdk.PutObjectOptions) (miniosdk.UploadInfo, error) {
	if s.err != nil {
		return miniosdk.UploadInfo{}, s.err
	}
	s.bucket = bucketName
	s.object = objectName
	s.contentType = opts.ContentType
	data, err := io.ReadAll(reader)
	if err != nil {
		return miniosdk.UploadInfo{}, err
	}
	s.payload = data
	return miniosdk.UploadInfo{Bucket: bucketName, Key: objectName}, nil
}

func TestArchiveStore(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	archive := &Archive{store: store, bucket: "patent-reports", logger: logging.NewNopLogger()}

	path, err := archive.Store(context.Background(), "coverage/2026-09-01.json", "application/json", []byte(`{"buckets":[]}`))
	require.NoError(t, err)

	assert.Equal(t, "patent-reports/coverage/2026-09-01.json", path)
	assert.Equal(t, "patent-reports", store.bucket)
	assert.Equal(t, "coverage/2026-09-01.json", store.object)
	assert.Equal(t, "application/json", store.contentType)
	assert.Equal(t, []byte(`{"buckets":[]}`), store.payload)
}

func TestArchiveStoreEmptyName(t *testing.T) {
	t.Parallel()

	archive := &Archive{store: &stubStore{}, bucket: "patent-reports", logger: logging.NewNopLogger()}

	_, err := archive.Store(context.Background(), "", "application/json", nil)
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrCodeReportArchiveFailed))
}

func TestArchiveStoreUploadFailure(t *testing.T) {
	t.Parallel()

	store := &stubStore{err: errors.New("connection reset")}
	archive := &Archive{store: store, bucket: "patent-reports", logger: logging.NewNopLogger()}

	_, err := archive.Store(context.Background(), "gaps/latest.json", "application/json", []byte("{}"))
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrCodeReportArchiveFailed))
}
