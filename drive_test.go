package linescan

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/linescan/internal/testutil"
)

func corpusLines(corpus map[string][]string) []string {
	var out []string
	for key, lines := range corpus {
		for _, l := range lines {
			out = append(out, key+"="+l)
		}
	}
	return out
}

func TestForEach(t *testing.T) {
	gen := testutil.NewTestDataGenerator(7)
	corpus := gen.Corpus("data/", 20, 40)
	bucket := gen.Bucket("scan-bucket", corpus)
	client := NewWithClient(bucket.Client())

	tests := []struct {
		name        string
		parallelism int
	}{
		{name: "sequential", parallelism: 1},
		{name: "non-positive parallelism", parallelism: 0},
		{name: "four workers", parallelism: 4},
		{name: "more workers than files", parallelism: 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := bucket.TotalGets()
			root, err := client.Lines(context.Background(), "scan-bucket", "data/",
				WithHandleWait(5*time.Millisecond), WithMaxBuffer(8))
			require.NoError(t, err)
			defer root.Close()

			var (
				mu  sync.Mutex
				got []string
			)
			err = ForEach(context.Background(), root, tt.parallelism, func(rec Record[string]) error {
				mu.Lock()
				defer mu.Unlock()
				got = append(got, rec.File.Key+"="+rec.Line)
				return nil
			})
			require.NoError(t, err)

			assert.ElementsMatch(t, corpusLines(corpus), got)
			assert.Equal(t, len(corpus), bucket.TotalGets()-before)

			stats := root.Stats()
			assert.Equal(t, int64(len(corpus)), stats.FilesClaimed)
			assert.Equal(t, int64(len(corpus)), stats.FilesExhausted)
			assert.LessOrEqual(t, stats.Workers, int64(max(tt.parallelism, 1)))
		})
	}
}

func TestForEach_CallbackError(t *testing.T) {
	m := newMemFiles(map[string]string{
		"a": linesOf("1", "2", "3"),
		"b": linesOf("1", "2", "3"),
	})
	root := newLineWorker(t, m, WithMaxBuffer(1))

	stop := stderrors.New("stop")
	var calls atomic.Int32
	err := ForEach(context.Background(), root, 2, func(Record[string]) error {
		calls.Add(1)
		return stop
	})
	require.ErrorIs(t, err, stop)
	assert.GreaterOrEqual(t, calls.Load(), int32(1))

	require.NoError(t, root.Close())
	m.closedOnce(t)
}

func TestCollect(t *testing.T) {
	m := newMemFiles(map[string]string{
		"a": linesOf("L1", "L2"),
		"b": linesOf("L1", "L2"),
		"c": linesOf("L1", "L2"),
	})
	root := newLineWorker(t, m)

	recs, err := Collect(context.Background(), root, 3)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"a=L1", "a=L2", "b=L1", "b=L2", "c=L1", "c=L2",
	}, lineValues(recs))
}

func TestCollect_Interrupted(t *testing.T) {
	m := newMemFiles(map[string]string{"a": "x\n"})
	root := newLineWorker(t, m, WithHandleWait(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	recs, err := Collect(ctx, root, 2)
	require.Error(t, err)
	assert.Nil(t, recs)
}
