package testutil

import (
	"context"
	"errors"

	"github.com/minio/minio-go/v7"
)

// MockMinioClient serves a fixed listing through the MinIO streaming API.
// GetObject is not supported since *minio.Object cannot be constructed outside the client.
type MockMinioClient struct {
	Objects []minio.ObjectInfo

	// ListErr, when set, is sent as the last listing entry
	ListErr error

	// LastOptions records the options of the latest ListObjects call
	LastOptions minio.ListObjectsOptions
}

// ListObjects streams Objects on a channel until ctx is done.
func (m *MockMinioClient) ListObjects(ctx context.Context, _ string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	m.LastOptions = opts
	ch := make(chan minio.ObjectInfo)
	go func() {
		defer close(ch)
		entries := append([]minio.ObjectInfo(nil), m.Objects...)
		if m.ListErr != nil {
			entries = append(entries, minio.ObjectInfo{Err: m.ListErr})
		}
		for _, obj := range entries {
			select {
			case ch <- obj:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// GetObject always fails.
func (m *MockMinioClient) GetObject(context.Context, string, string, minio.GetObjectOptions) (*minio.Object, error) {
	return nil, errors.New("testutil: GetObject not supported by MockMinioClient")
}
