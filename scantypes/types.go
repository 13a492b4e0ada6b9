// Package scantypes provides shared type definitions for the linescan module.
package scantypes

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-git/go-billy/v5"
)

// FileRef identifies one object to be scanned along with the listing metadata
// known about it. It is an immutable value copied through the scan queues.
type FileRef struct {
	// Bucket is the bucket (or filesystem root label) holding the object
	Bucket string

	// Key is the object key (path)
	Key string

	// Size is the object size in bytes as reported by the listing
	Size int64

	// LastModified is when the object was last modified
	LastModified time.Time

	// ETag is the entity tag for the object, if the store provides one
	ETag string

	// StorageClass is the storage class reported by the listing
	StorageClass string
}

// String returns the bucket-qualified key.
func (f FileRef) String() string {
	if f.Bucket == "" {
		return f.Key
	}
	return f.Bucket + "/" + f.Key
}

// Record is one decoded line together with the file it came from.
type Record[T any] struct {
	// File is the reference of the object the line was read from
	File FileRef

	// Line is the decoded value
	Line T
}

// Source yields the references of the files to scan.
// Next returns false once the source is exhausted. Implementations do not
// need to be safe for concurrent use; the scan serializes calls.
type Source interface {
	Next(ctx context.Context) (FileRef, bool, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) (FileRef, bool, error)

// Next calls f(ctx).
func (f SourceFunc) Next(ctx context.Context) (FileRef, bool, error) {
	return f(ctx)
}

// Opener turns a file reference into a readable byte stream.
// The returned stream may be read long after Open returns, possibly by a
// different goroutine, so it must not be bound to a short-lived context.
type Opener interface {
	Open(ctx context.Context, ref FileRef) (io.ReadCloser, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context, ref FileRef) (io.ReadCloser, error)

// Open calls f(ctx, ref).
func (f OpenerFunc) Open(ctx context.Context, ref FileRef) (io.ReadCloser, error) {
	return f(ctx, ref)
}

// Stats is a snapshot of the counters shared by every worker of a scan.
type Stats struct {
	// Workers is the number of workers created, including the root
	Workers int64

	// FilesClaimed is the number of references taken from the source
	FilesClaimed int64

	// FilesOpened is the number of streams opened
	FilesOpened int64

	// FilesExhausted is the number of streams read to the end
	FilesExhausted int64

	// HandlesReused is the number of times a parked handle was picked up from the pool
	HandlesReused int64

	// Refills is the number of buffer refill passes
	Refills int64

	// Records is the number of records handed to consumers
	Records int64

	// CacheHits is the number of opens served from the local cache
	CacheHits int64

	// CacheFills is the number of objects fetched into the local cache
	CacheFills int64
}

// ClientConfig holds configuration options for the S3-backed client.
type ClientConfig struct {
	// Region is the AWS region to use
	Region string

	// Endpoint is a custom S3 endpoint URL
	Endpoint string

	// ForcePathStyle forces path-style addressing
	ForcePathStyle bool

	// MaxRetries is the maximum number of SDK retry attempts
	MaxRetries int

	// Timeout is the HTTP timeout for individual requests
	Timeout time.Duration

	// CustomAWSConfig replaces the default AWS configuration when set
	CustomAWSConfig *aws.Config

	// CustomHTTPClient replaces the SDK's HTTP client when set
	CustomHTTPClient *http.Client

	// Logger receives client and scan logs; nil disables logging
	Logger *slog.Logger
}

// Option is a functional option for configuring the client.
type Option func(*ClientConfig)

// ListConfig holds configuration for listing the files of a scan.
type ListConfig struct {
	// Include holds glob patterns a key must match (any of) to be scanned
	Include []string

	// Exclude holds glob patterns that drop a key; excludes win over includes
	Exclude []string

	// StartAfter lists only keys after this key
	StartAfter string

	// PageSize is the listing page size (1-1000)
	PageSize int32

	// SkipEmpty drops zero-length objects from the listing
	SkipEmpty bool
}

// ListOption is a functional option for configuring a listing.
type ListOption func(*ListConfig)

// ScanConfig holds configuration for a scan and all of its workers.
type ScanConfig struct {
	// MaxBuffer is the number of records read per refill pass and the
	// initial capacity of the shared record buffer
	MaxBuffer int

	// HandleWait is the upper bound of the randomized wait for a parked handle
	HandleWait time.Duration

	// FairHandleReuse parks partially read handles at the back of the pool
	// instead of the front
	FairHandleReuse bool

	// ReadBufferSize is the size of the buffered reader wrapped around each stream
	ReadBufferSize int

	// Seed seeds the per-worker jitter generators when HasSeed is set
	Seed uint64

	// HasSeed reports whether Seed was provided
	HasSeed bool

	// Logger receives scan logs; nil disables logging
	Logger *slog.Logger

	// Cache is the filesystem used to keep local copies of scanned objects; nil disables caching
	Cache billy.Filesystem

	// SkipStaleCheck serves cached copies without comparing them to the listing metadata
	SkipStaleCheck bool

	// Decompress transparently decompresses gzip and zstd objects
	Decompress bool

	// List configures how the client lists files for the scan
	List ListConfig
}

// ScanOption is a functional option for configuring a scan.
type ScanOption func(*ScanConfig)
