package errors

import (
	"context"
	"errors"
)

// ErrorCode represents a class of scan failure.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// CodeNotFound indicates a requested bucket or object does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeForbidden indicates the caller lacks permission to list or read.
	CodeForbidden ErrorCode = "FORBIDDEN"

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeCancelled indicates a blocking wait was interrupted.
	CodeCancelled ErrorCode = "CANCELLED"

	// CodeTimeout indicates an operation exceeded its deadline.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeDataCorrupted indicates a record or stream could not be decoded.
	CodeDataCorrupted ErrorCode = "DATA_CORRUPTED"

	// CodeUnavailable indicates the scan or the backing store can no longer serve requests.
	CodeUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// CodeOf classifies err into an ErrorCode.
// A nil error has no code and yields the empty string.
func CodeOf(err error) ErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.Is(err, ErrInterrupted), errors.Is(err, context.Canceled):
		return CodeCancelled
	case errors.Is(err, ErrObjectNotFound), errors.Is(err, ErrBucketNotFound):
		return CodeNotFound
	case errors.Is(err, ErrAccessDenied):
		return CodeForbidden
	case IsInvalidInput(err):
		return CodeInvalidInput
	case errors.Is(err, ErrDecode), errors.Is(err, ErrUnsupportedEncoding):
		return CodeDataCorrupted
	case errors.Is(err, ErrClosed):
		return CodeUnavailable
	default:
		return CodeUnknown
	}
}
