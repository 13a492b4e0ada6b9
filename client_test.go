package linescan

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/linescan/errors"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/scantypes"
)

// TestClient_New tests the New() constructor without touching the default credential chain.
func TestClient_New(t *testing.T) {
	tests := []struct {
		name       string
		opts       []scantypes.Option
		wantRegion string
	}{
		{
			name:       "region from aws config",
			opts:       []scantypes.Option{WithAWSConfig(aws.Config{Region: "eu-west-1"})},
			wantRegion: "eu-west-1",
		},
		{
			name:       "region option overrides aws config",
			opts:       []scantypes.Option{WithAWSConfig(aws.Config{Region: "eu-west-1"}), WithRegion("us-west-2")},
			wantRegion: "us-west-2",
		},
		{
			name:       "default region",
			opts:       []scantypes.Option{WithAWSConfig(aws.Config{})},
			wantRegion: "us-east-1",
		},
		{
			name: "endpoint and path style",
			opts: []scantypes.Option{
				WithAWSConfig(aws.Config{Region: "us-east-1"}),
				WithEndpoint("http://localhost:4566"),
				WithForcePathStyle(true),
				WithMaxRetries(5),
				WithTimeout(10 * time.Second),
			},
			wantRegion: "us-east-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.opts...)
			require.NoError(t, err)
			require.NotNil(t, client)
			assert.NotNil(t, client.s3Client)
			assert.Equal(t, tt.wantRegion, client.Region())
			assert.NoError(t, client.Close())
		})
	}
}

func TestClient_Source_Validation(t *testing.T) {
	client := NewWithClient(testutil.NewMemoryBucket("bucket").Client())

	tests := []struct {
		name    string
		bucket  string
		prefix  string
		opts    []scantypes.ListOption
		wantErr error
	}{
		{name: "empty bucket", bucket: "", wantErr: errors.ErrInvalidBucketName},
		{name: "uppercase bucket", bucket: "MyBucket", wantErr: errors.ErrInvalidBucketName},
		{name: "ip bucket", bucket: "192.168.1.1", wantErr: errors.ErrInvalidBucketName},
		{name: "traversal prefix", bucket: "bucket", prefix: "logs/../secret/", wantErr: errors.ErrInvalidPrefix},
		{name: "page size too large", bucket: "bucket", opts: []scantypes.ListOption{WithPageSize(5000)}, wantErr: errors.ErrInvalidInput},
		{name: "empty pattern", bucket: "bucket", opts: []scantypes.ListOption{WithExclude("")}, wantErr: errors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := client.Source(tt.bucket, tt.prefix, tt.opts...)
			require.Error(t, err)
			assert.Nil(t, src)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, errors.IsInvalidInput(err))
		})
	}
}

func TestClient_Lines(t *testing.T) {
	bucket := testutil.NewMemoryBucket("logs").
		PutLines("2024/01/app.log", "a1", "a2").
		PutLines("2024/01/app.txt", "skip").
		PutLines("2024/02/db.log", "d1").
		Put("2024/02/empty.log", nil).
		PutLines("other/x.log", "outside")
	client := NewWithClient(bucket.Client())

	root, err := client.Lines(context.Background(), "logs", "2024/",
		WithHandleWait(5*time.Millisecond),
		WithListOptions(WithInclude("*.log"), WithSkipEmpty(true), WithPageSize(1)),
	)
	require.NoError(t, err)
	defer root.Close()

	recs, err := Collect(context.Background(), root, 2)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"2024/01/app.log=a1", "2024/01/app.log=a2", "2024/02/db.log=d1",
	}, lineValues(recs))

	for _, rec := range recs {
		assert.Equal(t, "logs", rec.File.Bucket)
		assert.NotEmpty(t, rec.File.ETag)
		assert.False(t, rec.File.LastModified.IsZero())
	}
	assert.Equal(t, 0, bucket.Gets("2024/01/app.txt"))
	assert.Equal(t, 0, bucket.Gets("2024/02/empty.log"))
	assert.Equal(t, 0, bucket.Gets("other/x.log"))
	assert.Greater(t, bucket.Lists(), 1)
}

func TestClient_ScanJSON(t *testing.T) {
	type event struct {
		ID   int    `json:"id"`
		Kind string `json:"kind"`
	}

	bucket := testutil.NewMemoryBucket("events").
		PutLines("e.jsonl", `{"id":1,"kind":"start"}`, "", `{"id":2,"kind":"stop"}`)
	client := NewWithClient(bucket.Client())

	root, err := ScanJSON[event](context.Background(), client, "events", "", WithHandleWait(0))
	require.NoError(t, err)
	defer root.Close()

	recs, err := Drain(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, event{ID: 1, Kind: "start"}, recs[0].Line)
	assert.Equal(t, event{ID: 2, Kind: "stop"}, recs[1].Line)
}

func TestClient_MissingBucket(t *testing.T) {
	client := NewWithClient(testutil.NewMemoryBucket("present").Client())

	root, err := client.Lines(context.Background(), "absent", "", WithHandleWait(0))
	require.NoError(t, err)
	defer root.Close()

	_, _, err = root.TryAdvance(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsBucketNotFound(err))
	assert.Equal(t, errors.CodeNotFound, errors.CodeOf(err))

	var scanErr *errors.Error
	require.ErrorAs(t, err, &scanErr)
	assert.Equal(t, "list", scanErr.Op)
	assert.Equal(t, "absent", scanErr.Bucket)
}

func TestClient_Closed(t *testing.T) {
	client := NewWithClient(testutil.NewMemoryBucket("bucket").Client())
	require.NoError(t, client.Close())

	_, err := client.Lines(context.Background(), "bucket", "")
	assert.ErrorIs(t, err, errors.ErrClosed)
}

func TestScan_NilClient(t *testing.T) {
	_, err := Scan[string](context.Background(), nil, "bucket", "", Lines)
	assert.True(t, errors.IsInvalidInput(err))
}
