package source

import (
	"context"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"

	"github.com/input-output-hk/catalyst-forge-libs/linescan/errors"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/internal/filter"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/internal/minioapi"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/scantypes"
)

// Minio lists the objects under a prefix of a MinIO (or other S3-compatible) bucket.
//
// The MinIO client streams the listing from a background goroutine. That
// goroutine is started on the first call to Next and lives until the listing
// is exhausted or Close is called.
type Minio struct {
	client  minioapi.Client
	bucket  string
	prefix  string
	cfg     scantypes.ListConfig
	matcher *filter.Matcher

	objects <-chan minio.ObjectInfo

	// mu guards done and cancel, which Close touches concurrently with Next.
	mu     sync.Mutex
	cancel context.CancelFunc
	done   bool
}

// NewMinio creates a listing of bucket under prefix.
func NewMinio(client minioapi.Client, bucket, prefix string, cfg scantypes.ListConfig) (*Minio, error) {
	matcher, err := filter.New(cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, errors.NewBucketError("list", bucket, err).WithMessage("invalid filter")
	}
	return &Minio{
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
		cfg:     cfg,
		matcher: matcher,
	}, nil
}

// Next returns the next matching object.
func (m *Minio) Next(ctx context.Context) (scantypes.FileRef, bool, error) {
	if !m.start(ctx) {
		return scantypes.FileRef{}, false, nil
	}

	for {
		select {
		case <-ctx.Done():
			return scantypes.FileRef{}, false, ctx.Err()
		case obj, ok := <-m.objects:
			if !ok {
				m.finish()
				return scantypes.FileRef{}, false, nil
			}
			if obj.Err != nil {
				return scantypes.FileRef{}, false, errors.NewBucketError("list", m.bucket, minioapi.Classify(obj.Err))
			}
			ref := scantypes.FileRef{
				Bucket:       m.bucket,
				Key:          obj.Key,
				Size:         obj.Size,
				LastModified: obj.LastModified,
				ETag:         strings.Trim(obj.ETag, `"`),
				StorageClass: obj.StorageClass,
			}
			if keep(ref, m.prefix, m.cfg, m.matcher) {
				return ref, true, nil
			}
		}
	}
}

// Close stops the background listing.
func (m *Minio) Close() error {
	m.finish()
	return nil
}

// start launches the listing on first use. It reports false once the
// listing is finished or closed.
func (m *Minio) start(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done {
		return false
	}
	if m.objects == nil {
		// The listing outlives this call, so it must not inherit its cancellation.
		lctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		m.cancel = cancel
		m.objects = m.client.ListObjects(lctx, m.bucket, minio.ListObjectsOptions{
			Prefix:     m.prefix,
			Recursive:  true,
			StartAfter: m.cfg.StartAfter,
			MaxKeys:    int(m.cfg.PageSize),
		})
	}
	return true
}

func (m *Minio) finish() {
	m.mu.Lock()
	m.done = true
	cancel := m.cancel
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
