// Package errors provides error types and handling for line scanning operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a scan operation error with context about the object that failed.
// It wraps the underlying storage or decoding error with the operation, bucket and key.
type Error struct {
	// Op is the operation that failed (e.g., "open", "read", "split", "advance")
	Op string

	// Bucket is the bucket or root of the object (if applicable)
	Bucket string

	// Key is the object key (if applicable)
	Key string

	// Err is the underlying error
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("linescan.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("linescan.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("linescan.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("linescan.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewBucketError creates a new Error with bucket context.
func NewBucketError(op, bucket string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Err:    err,
	}
}

// NewObjectError creates a new Error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}

// Sentinel errors for common scan failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrInterrupted indicates that a blocking wait was cancelled by the caller's context
	ErrInterrupted = errors.New("linescan: interrupted")

	// ErrClosed indicates that the scan was closed and can no longer be advanced
	ErrClosed = errors.New("linescan: scan closed")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("linescan: invalid input")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("linescan: invalid bucket name")

	// ErrInvalidPrefix indicates that the key prefix is invalid
	ErrInvalidPrefix = errors.New("linescan: invalid prefix")

	// ErrObjectNotFound indicates that the requested object does not exist
	ErrObjectNotFound = errors.New("linescan: object not found")

	// ErrBucketNotFound indicates that the requested bucket does not exist
	ErrBucketNotFound = errors.New("linescan: bucket not found")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("linescan: access denied")

	// ErrDecode indicates that a record could not be decoded
	ErrDecode = errors.New("linescan: decode failed")

	// ErrUnsupportedEncoding indicates a compressed stream in a format that cannot be read
	ErrUnsupportedEncoding = errors.New("linescan: unsupported content encoding")
)

// IsInterrupted checks if an error indicates that a wait was interrupted.
func IsInterrupted(err error) bool {
	return errors.Is(err, ErrInterrupted)
}

// IsObjectNotFound checks if an error indicates that an object was not found.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsBucketNotFound checks if an error indicates that a bucket was not found.
func IsBucketNotFound(err error) bool {
	return errors.Is(err, ErrBucketNotFound)
}

// IsAccessDenied checks if an error indicates access was denied.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsInvalidInput checks if an error indicates invalid input.
// Invalid bucket names and prefixes count as invalid input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidBucketName) ||
		errors.Is(err, ErrInvalidPrefix)
}
