package opener

import (
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/linescan/internal/s3api"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/scantypes"
)

// S3Getter defines the S3 operation the opener needs.
type S3Getter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3 opens objects with GetObject.
type S3 struct {
	client S3Getter
}

// NewS3 creates an S3 opener.
func NewS3(client S3Getter) *S3 {
	return &S3{client: client}
}

// Open starts streaming the object body.
func (o *S3) Open(ctx context.Context, ref scantypes.FileRef) (io.ReadCloser, error) {
	out, err := o.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(ref.Bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		return nil, s3api.Classify(err)
	}
	if out.Body == nil {
		return io.NopCloser(strings.NewReader("")), nil
	}
	return out.Body, nil
}
