package opener

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"

	"github.com/input-output-hk/catalyst-forge-libs/linescan/internal/minioapi"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/scantypes"
)

// Minio opens objects through a MinIO client.
type Minio struct {
	client minioapi.Client
}

// NewMinio creates a MinIO opener.
func NewMinio(client minioapi.Client) *Minio {
	return &Minio{client: client}
}

// Open starts streaming the object. MinIO defers the request until the first
// read, so the object is stat'ed here to surface missing keys at open time.
func (o *Minio) Open(ctx context.Context, ref scantypes.FileRef) (io.ReadCloser, error) {
	obj, err := o.client.GetObject(ctx, ref.Bucket, ref.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, minioapi.Classify(err)
	}
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, minioapi.Classify(err)
	}
	return obj, nil
}
