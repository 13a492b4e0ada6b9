// Package opener provides the ways a scan turns a file reference into a stream.
//
// Openers for S3, MinIO and billy filesystems return the raw object body.
// Decompress wraps any opener and transparently inflates gzip and zstd content.
package opener
