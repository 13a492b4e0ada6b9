//go:build integration
// +build integration

package linescan_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/linescan"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/errors"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/internal/testutil"
)

// TestIntegrationScan scans a seeded LocalStack bucket through the public client.
func TestIntegrationScan(t *testing.T) {
	ls := testutil.StartLocalStack(t)
	ctx := context.Background()

	s3Client, err := ls.S3Client(ctx)
	require.NoError(t, err)

	gen := testutil.NewTestDataGenerator(99)
	corpus := gen.Corpus("logs/", 25, 200)
	require.NoError(t, testutil.Seed(ctx, s3Client, "integration-scan", corpus))

	awsCfg, err := ls.AWSConfig(ctx)
	require.NoError(t, err)
	client, err := linescan.New(
		linescan.WithAWSConfig(awsCfg),
		linescan.WithEndpoint(ls.Endpoint),
		linescan.WithForcePathStyle(true),
		linescan.WithTimeout(30*time.Second),
	)
	require.NoError(t, err)
	defer client.Close()

	var want []string
	for key, lines := range corpus {
		for _, l := range lines {
			want = append(want, key+"="+l)
		}
	}

	t.Run("all files", func(t *testing.T) {
		root, err := client.Lines(ctx, "integration-scan", "logs/",
			linescan.WithMaxBuffer(16),
			linescan.WithHandleWait(50*time.Millisecond),
			linescan.WithListOptions(linescan.WithPageSize(7)),
		)
		require.NoError(t, err)
		defer root.Close()

		recs, err := linescan.Collect(ctx, root, 6)
		require.NoError(t, err)

		got := make([]string, len(recs))
		for i, rec := range recs {
			got[i] = rec.File.Key + "=" + rec.Line
		}
		assert.ElementsMatch(t, want, got)

		stats := root.Stats()
		assert.Equal(t, int64(len(corpus)), stats.FilesOpened)
		assert.Equal(t, int64(len(corpus)), stats.FilesExhausted)
	})

	t.Run("missing bucket", func(t *testing.T) {
		root, err := client.Lines(ctx, "integration-missing", "", linescan.WithHandleWait(0))
		require.NoError(t, err)
		defer root.Close()

		_, _, err = root.TryAdvance(ctx)
		assert.True(t, errors.IsBucketNotFound(err), "got %v", err)
	})
}
