package source

import (
	"context"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scanerrors "github.com/input-output-hk/catalyst-forge-libs/linescan/errors"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/scantypes"
)

type nexter interface {
	Next(ctx context.Context) (scantypes.FileRef, bool, error)
}

func drainKeys(t *testing.T, src nexter) []string {
	t.Helper()
	var keys []string
	for {
		ref, ok, err := src.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			return keys
		}
		keys = append(keys, ref.Key)
	}
}

// TestS3Source tests listing across pages with the listing options applied.
func TestS3Source(t *testing.T) {
	bucket := testutil.NewMemoryBucket("logs-bucket").
		PutLines("2024/a.log", "1").
		PutLines("2024/b.log", "2").
		PutLines("2024/c.txt", "3").
		Put("2024/empty.log", nil).
		Put("2024/folder/", nil).
		PutLines("2024/folder/d.log", "4").
		PutLines("2025/e.log", "5")

	tests := []struct {
		name   string
		prefix string
		cfg    scantypes.ListConfig
		want   []string
		pages  int
	}{
		{
			name:   "prefix with small pages",
			prefix: "2024/",
			cfg:    scantypes.ListConfig{PageSize: 2},
			want:   []string{"2024/a.log", "2024/b.log", "2024/c.txt", "2024/empty.log", "2024/folder/d.log"},
			pages:  3,
		},
		{
			name:   "include glob",
			prefix: "2024/",
			cfg:    scantypes.ListConfig{Include: []string{"*.log"}},
			want:   []string{"2024/a.log", "2024/b.log", "2024/empty.log", "2024/folder/d.log"},
			pages:  1,
		},
		{
			name:   "exclude directory and empties",
			prefix: "2024/",
			cfg:    scantypes.ListConfig{Exclude: []string{"folder/"}, SkipEmpty: true},
			want:   []string{"2024/a.log", "2024/b.log", "2024/c.txt"},
			pages:  1,
		},
		{
			name:   "start after",
			prefix: "",
			cfg:    scantypes.ListConfig{StartAfter: "2024/folder/d.log"},
			want:   []string{"2025/e.log"},
			pages:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewS3(bucket.Client(), "logs-bucket", tt.prefix, tt.cfg)
			require.NoError(t, err)

			assert.Equal(t, tt.want, drainKeys(t, src))
			assert.Equal(t, tt.pages, src.Pages())

			_, ok, err := src.Next(context.Background())
			require.NoError(t, err)
			assert.False(t, ok, "an exhausted listing stays exhausted")
		})
	}
}

// TestS3SourceMetadata tests that listing metadata reaches the file reference.
func TestS3SourceMetadata(t *testing.T) {
	bucket := testutil.NewMemoryBucket("meta-bucket").PutLines("k.txt", "hello")
	src, err := NewS3(bucket.Client(), "meta-bucket", "", scantypes.ListConfig{})
	require.NoError(t, err)

	ref, ok, err := src.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "meta-bucket", ref.Bucket)
	assert.Equal(t, int64(6), ref.Size)
	assert.False(t, ref.LastModified.IsZero())
	assert.NotEmpty(t, ref.ETag)
	assert.NotContains(t, ref.ETag, `"`)
	assert.Equal(t, "STANDARD", ref.StorageClass)
}

// TestS3SourceErrors tests error classification of listing failures.
func TestS3SourceErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, scanerrors.ErrAccessDenied},
		{"missing bucket", &smithy.GenericAPIError{Code: "NoSuchBucket"}, scanerrors.ErrBucketNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := testutil.NewMockBuilder().WithListObjectsV2Error(tt.err).Build()
			src, err := NewS3(client, "some-bucket", "", scantypes.ListConfig{})
			require.NoError(t, err)

			_, ok, err := src.Next(context.Background())
			assert.False(t, ok)
			assert.ErrorIs(t, err, tt.want)

			var scanErr *scanerrors.Error
			require.ErrorAs(t, err, &scanErr)
			assert.Equal(t, "list", scanErr.Op)
			assert.Equal(t, "some-bucket", scanErr.Bucket)
		})
	}

	_, err := NewS3(testutil.NewMockBuilder().Build(), "b", "", scantypes.ListConfig{Include: []string{"[x"}})
	assert.Error(t, err)
}

// TestMinioSource tests streaming a MinIO listing.
func TestMinioSource(t *testing.T) {
	mod := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	client := &testutil.MockMinioClient{
		Objects: []minio.ObjectInfo{
			{Key: "data/a.jsonl", Size: 10, LastModified: mod, ETag: `"abc"`},
			{Key: "data/dir/", Size: 0},
			{Key: "data/b.csv", Size: 5},
			{Key: "data/c.jsonl", Size: 0},
		},
	}

	src, err := NewMinio(client, "minio-bucket", "data/", scantypes.ListConfig{
		Include:    []string{"*.jsonl"},
		StartAfter: "data/0",
		PageSize:   50,
	})
	require.NoError(t, err)

	ref, ok, err := src.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, scantypes.FileRef{Bucket: "minio-bucket", Key: "data/a.jsonl", Size: 10, LastModified: mod, ETag: "abc"}, ref)

	assert.Equal(t, []string{"data/c.jsonl"}, drainKeys(t, src))
	assert.Equal(t, "data/", client.LastOptions.Prefix)
	assert.True(t, client.LastOptions.Recursive)
	assert.Equal(t, "data/0", client.LastOptions.StartAfter)
	assert.Equal(t, 50, client.LastOptions.MaxKeys)
	require.NoError(t, src.Close())
}

// TestMinioSourceError tests that a listing error is classified.
func TestMinioSourceError(t *testing.T) {
	client := &testutil.MockMinioClient{
		ListErr: minio.ErrorResponse{Code: "NoSuchBucket"},
	}
	src, err := NewMinio(client, "gone", "", scantypes.ListConfig{})
	require.NoError(t, err)

	_, _, err = src.Next(context.Background())
	assert.ErrorIs(t, err, scanerrors.ErrBucketNotFound)
	require.NoError(t, src.Close())
}

// TestMinioSourceCancelled tests that a cancelled call returns the context error
// and that Close stops the listing.
func TestMinioSourceCancelled(t *testing.T) {
	client := &testutil.MockMinioClient{Objects: []minio.ObjectInfo{{Key: "a"}}}
	src, err := NewMinio(client, "b", "", scantypes.ListConfig{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = src.Next(ctx)
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}

	require.NoError(t, src.Close())
	_, ok, err := src.Next(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestDirSource tests walking a billy filesystem.
func TestDirSource(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "logs/b.log", []byte("b\n"), 0o644))
	require.NoError(t, util.WriteFile(fs, "logs/a.log", []byte("a\n"), 0o644))
	require.NoError(t, util.WriteFile(fs, "logs/sub/c.log", []byte("c\n"), 0o644))
	require.NoError(t, util.WriteFile(fs, "logs/skip.tmp", []byte("x\n"), 0o644))
	require.NoError(t, util.WriteFile(fs, "logs/empty.log", nil, 0o644))
	require.NoError(t, util.WriteFile(fs, "other/d.log", []byte("d\n"), 0o644))

	tests := []struct {
		name string
		root string
		cfg  scantypes.ListConfig
		want []string
	}{
		{
			name: "whole tree",
			root: "",
			cfg:  scantypes.ListConfig{Include: []string{"*.log"}},
			want: []string{"logs/a.log", "logs/b.log", "logs/empty.log", "logs/sub/c.log", "other/d.log"},
		},
		{
			name: "subtree without empties",
			root: "logs",
			cfg:  scantypes.ListConfig{Exclude: []string{"*.tmp"}, SkipEmpty: true},
			want: []string{"logs/a.log", "logs/b.log", "logs/sub/c.log"},
		},
		{
			name: "relative filter",
			root: "logs",
			cfg:  scantypes.ListConfig{Include: []string{"sub/**"}},
			want: []string{"logs/sub/c.log"},
		},
		{
			name: "start after",
			root: "/logs/",
			cfg:  scantypes.ListConfig{StartAfter: "logs/empty.log"},
			want: []string{"logs/skip.tmp", "logs/sub/c.log"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewDir(fs, tt.root, tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, drainKeys(t, src))
		})
	}
}

// TestDirSourceMissingRoot tests listing a directory that does not exist.
func TestDirSourceMissingRoot(t *testing.T) {
	src, err := NewDir(memfs.New(), "nope", scantypes.ListConfig{})
	require.NoError(t, err)

	_, _, err = src.Next(context.Background())
	assert.ErrorIs(t, err, scanerrors.ErrBucketNotFound)
}

// TestSliceSource tests the fixed-list source.
func TestSliceSource(t *testing.T) {
	refs := []scantypes.FileRef{{Key: "f1"}, {Key: "f2"}}
	src := NewSlice(refs...)
	refs[0].Key = "mutated"

	assert.Equal(t, 2, src.Remaining())
	assert.Equal(t, []string{"f1", "f2"}, drainKeys(t, src))
	assert.Equal(t, 0, src.Remaining())
}

