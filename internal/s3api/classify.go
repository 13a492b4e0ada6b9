package s3api

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	scanerrors "github.com/input-output-hk/catalyst-forge-libs/linescan/errors"
)

// Classify maps an AWS SDK error onto the scan sentinel errors while keeping
// the original error in the chain. Unrecognized errors are returned as is.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return fmt.Errorf("%w: %w", scanerrors.ErrObjectNotFound, err)
	}
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &noSuchBucket) {
		return fmt.Errorf("%w: %w", scanerrors.ErrBucketNotFound, err)
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.ErrorCode() {
	case "NoSuchKey", "NotFound":
		return fmt.Errorf("%w: %w", scanerrors.ErrObjectNotFound, err)
	case "NoSuchBucket":
		return fmt.Errorf("%w: %w", scanerrors.ErrBucketNotFound, err)
	case "AccessDenied", "Forbidden", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return fmt.Errorf("%w: %w", scanerrors.ErrAccessDenied, err)
	default:
		return err
	}
}
