package source

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/linescan/errors"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/internal/filter"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/internal/s3api"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/scantypes"
)

// maxPageSize is the largest page S3 returns for ListObjectsV2.
const maxPageSize = 1000

// S3Lister defines the S3 operation the listing needs.
type S3Lister interface {
	ListObjectsV2(
		ctx context.Context,
		input *s3.ListObjectsV2Input,
		opts ...func(*s3.Options),
	) (*s3.ListObjectsV2Output, error)
}

// S3 lists the objects under a prefix page by page.
type S3 struct {
	client   S3Lister
	bucket   string
	prefix   string
	cfg      scantypes.ListConfig
	matcher  *filter.Matcher
	pageSize int32

	page              []scantypes.FileRef
	continuationToken *string
	firstPage         bool
	hasMorePages      bool
	pages             int
}

// NewS3 creates a listing of bucket under prefix.
func NewS3(client S3Lister, bucket, prefix string, cfg scantypes.ListConfig) (*S3, error) {
	matcher, err := filter.New(cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, errors.NewBucketError("list", bucket, err).WithMessage("invalid filter")
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return &S3{
		client:    client,
		bucket:    bucket,
		prefix:    prefix,
		cfg:       cfg,
		matcher:   matcher,
		pageSize:  pageSize,
		firstPage: true,
	}, nil
}

// Next returns the next matching object, fetching further pages as needed.
func (s *S3) Next(ctx context.Context) (scantypes.FileRef, bool, error) {
	for len(s.page) == 0 {
		if !s.firstPage && !s.hasMorePages {
			return scantypes.FileRef{}, false, nil
		}
		if err := s.nextPage(ctx); err != nil {
			return scantypes.FileRef{}, false, err
		}
	}

	ref := s.page[0]
	s.page = s.page[1:]
	return ref, true, nil
}

// Pages returns the number of pages fetched so far.
func (s *S3) Pages() int {
	return s.pages
}

func (s *S3) nextPage(ctx context.Context) error {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		MaxKeys: aws.Int32(s.pageSize),
	}
	if s.prefix != "" {
		input.Prefix = aws.String(s.prefix)
	}

	if !s.firstPage && s.continuationToken != nil {
		input.ContinuationToken = s.continuationToken
	} else if s.cfg.StartAfter != "" {
		input.StartAfter = aws.String(s.cfg.StartAfter)
	}

	output, err := s.client.ListObjectsV2(ctx, input)
	if err != nil {
		return errors.NewBucketError("list", s.bucket, s3api.Classify(err))
	}

	s.firstPage = false
	s.pages++
	s.continuationToken = output.NextContinuationToken
	// A truncated page without a token cannot be continued.
	s.hasMorePages = aws.ToBool(output.IsTruncated) && output.NextContinuationToken != nil

	for _, obj := range output.Contents {
		ref := scantypes.FileRef{
			Bucket:       s.bucket,
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
			ETag:         strings.Trim(aws.ToString(obj.ETag), `"`),
			StorageClass: string(obj.StorageClass),
		}
		if keep(ref, s.prefix, s.cfg, s.matcher) {
			s.page = append(s.page, ref)
		}
	}
	return nil
}

// keep applies the listing options shared by every source.
// Keys ending in "/" are folder markers and never hold records.
func keep(ref scantypes.FileRef, prefix string, cfg scantypes.ListConfig, m *filter.Matcher) bool {
	if ref.Key == "" || strings.HasSuffix(ref.Key, "/") {
		return false
	}
	if cfg.SkipEmpty && ref.Size == 0 {
		return false
	}
	return m.Match(strings.TrimPrefix(ref.Key, prefix))
}
