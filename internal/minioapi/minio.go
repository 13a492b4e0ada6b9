// Package minioapi defines the MinIO client surface used by the scanner.
package minioapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/minio/minio-go/v7"

	scanerrors "github.com/input-output-hk/catalyst-forge-libs/linescan/errors"
)

// Client is the subset of *minio.Client used for listing and reading objects.
type Client interface {
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	GetObject(ctx context.Context, bucket, object string, opts minio.GetObjectOptions) (*minio.Object, error)
}

var _ Client = (*minio.Client)(nil)

// Classify maps a MinIO error response onto the scan sentinel errors.
// Unrecognized errors are returned as is.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchKey":
		return fmt.Errorf("%w: %w", scanerrors.ErrObjectNotFound, err)
	case resp.Code == "NoSuchBucket":
		return fmt.Errorf("%w: %w", scanerrors.ErrBucketNotFound, err)
	case resp.Code == "AccessDenied" || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %w", scanerrors.ErrAccessDenied, err)
	default:
		return err
	}
}
