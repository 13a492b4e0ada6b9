// Package testutil provides test helper functions.
package testutil

import (
	"crypto/md5"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// StringPtr returns a pointer to the given string.
// This is useful for AWS SDK inputs that require string pointers.
func StringPtr(s string) *string {
	return aws.String(s)
}

// Int64Ptr returns a pointer to the given int64.
func Int64Ptr(i int64) *int64 {
	return aws.Int64(i)
}

// TimePtr returns a pointer to the given time.
func TimePtr(t time.Time) *time.Time {
	return &t
}

// CalculateETag calculates the ETag for the given data.
// For simple uploads, this is the MD5 hash.
func CalculateETag(data []byte) string {
	h := md5.Sum(data)
	return fmt.Sprintf(`"%x"`, h)
}

// CreateTestObject creates a test S3 object structure.
// This is useful for mocking ListObjectsV2 responses.
func CreateTestObject(key string, size int64, lastModified time.Time) types.Object {
	return types.Object{
		Key:          StringPtr(key),
		Size:         Int64Ptr(size),
		LastModified: TimePtr(lastModified),
		ETag:         StringPtr(fmt.Sprintf(`"%x"`, md5.Sum([]byte(key)))),
		StorageClass: types.ObjectStorageClassStandard,
	}
}

// TrackingReadCloser wraps a reader and records whether it was closed.
type TrackingReadCloser struct {
	io.Reader
	closed atomic.Int32
	// CloseErr is returned from Close when set
	CloseErr error
}

// NewTrackingReadCloser creates a tracking stream over s.
func NewTrackingReadCloser(s string) *TrackingReadCloser {
	return &TrackingReadCloser{Reader: strings.NewReader(s)}
}

// Close marks the stream closed.
func (t *TrackingReadCloser) Close() error {
	t.closed.Add(1)
	return t.CloseErr
}

// Closed reports how many times Close was called.
func (t *TrackingReadCloser) Closed() int {
	return int(t.closed.Load())
}

// FailingReader yields data and then fails with Err.
type FailingReader struct {
	Data string
	Err  error
	read bool
}

// Read implements io.Reader.
func (f *FailingReader) Read(p []byte) (int, error) {
	if !f.read {
		f.read = true
		n := copy(p, f.Data)
		return n, nil
	}
	return 0, f.Err
}
