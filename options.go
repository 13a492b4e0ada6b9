package linescan

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-git/go-billy/v5"

	"github.com/input-output-hk/catalyst-forge-libs/linescan/scantypes"
)

// WithRegion sets the AWS region for S3 operations.
// If not specified, uses the default AWS region from the credential chain.
func WithRegion(region string) scantypes.Option {
	return func(c *scantypes.ClientConfig) {
		c.Region = region
	}
}

// WithEndpoint sets a custom S3 endpoint, e.g. for LocalStack or an S3
// compatible store.
func WithEndpoint(endpoint string) scantypes.Option {
	return func(c *scantypes.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithForcePathStyle forces the use of path-style URLs instead of virtual-hosted style.
func WithForcePathStyle(force bool) scantypes.Option {
	return func(c *scantypes.ClientConfig) {
		c.ForcePathStyle = force
	}
}

// WithMaxRetries sets the maximum number of retry attempts for failed requests.
// Default is 3 retries.
func WithMaxRetries(maxRetries int) scantypes.Option {
	return func(c *scantypes.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithTimeout sets the HTTP timeout for individual S3 requests.
// Streams are read long after the request that opened them, so the timeout
// also bounds how long a scan may keep a single stream open.
func WithTimeout(timeout time.Duration) scantypes.Option {
	return func(c *scantypes.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithAWSConfig uses the given AWS configuration instead of loading the
// default credential chain.
func WithAWSConfig(cfg aws.Config) scantypes.Option {
	return func(c *scantypes.ClientConfig) {
		c.CustomAWSConfig = &cfg
	}
}

// WithCustomHTTPClient sets the HTTP client used by the SDK.
// It takes precedence over WithTimeout.
func WithCustomHTTPClient(client *http.Client) scantypes.Option {
	return func(c *scantypes.ClientConfig) {
		c.CustomHTTPClient = client
	}
}

// WithLogger sets the logger used by the client and, unless overridden with
// WithScanLogger, by its scans.
func WithLogger(logger *slog.Logger) scantypes.Option {
	return func(c *scantypes.ClientConfig) {
		c.Logger = logger
	}
}

// WithMaxBuffer sets how many records a worker decodes per refill.
// Default is 128.
func WithMaxBuffer(n int) scantypes.ScanOption {
	return func(c *scantypes.ScanConfig) {
		c.MaxBuffer = n
	}
}

// WithHandleWait sets the upper bound of the randomized wait for a parked
// stream before a worker opens a new file. Default is 2s; zero disables the wait.
func WithHandleWait(d time.Duration) scantypes.ScanOption {
	return func(c *scantypes.ScanConfig) {
		c.HandleWait = d
	}
}

// WithFairHandleReuse parks partially read streams behind the others, so
// open files are read round-robin rather than most-recently-used first.
func WithFairHandleReuse(fair bool) scantypes.ScanOption {
	return func(c *scantypes.ScanConfig) {
		c.FairHandleReuse = fair
	}
}

// WithReadBufferSize sets the size of the buffered reader wrapped around each stream.
func WithReadBufferSize(size int) scantypes.ScanOption {
	return func(c *scantypes.ScanConfig) {
		c.ReadBufferSize = size
	}
}

// WithSeed makes the randomized waits reproducible.
// Worker n of the scan draws from a generator seeded with seed+n.
func WithSeed(seed uint64) scantypes.ScanOption {
	return func(c *scantypes.ScanConfig) {
		c.Seed = seed
		c.HasSeed = true
	}
}

// WithScanLogger sets the logger for a single scan.
func WithScanLogger(logger *slog.Logger) scantypes.ScanOption {
	return func(c *scantypes.ScanConfig) {
		c.Logger = logger
	}
}

// WithCache keeps a local copy of every scanned object on fsys and serves
// later scans from it while the copy matches the listing.
func WithCache(fsys billy.Filesystem) scantypes.ScanOption {
	return func(c *scantypes.ScanConfig) {
		c.Cache = fsys
	}
}

// WithSkipStaleCheck serves cached copies without comparing them to the listing.
func WithSkipStaleCheck(skip bool) scantypes.ScanOption {
	return func(c *scantypes.ScanConfig) {
		c.SkipStaleCheck = skip
	}
}

// WithDecompression transparently decompresses gzip and zstd objects.
func WithDecompression(enabled bool) scantypes.ScanOption {
	return func(c *scantypes.ScanConfig) {
		c.Decompress = enabled
	}
}

// WithListOptions configures the listing a client builds for a scan.
func WithListOptions(opts ...scantypes.ListOption) scantypes.ScanOption {
	return func(c *scantypes.ScanConfig) {
		for _, opt := range opts {
			opt(&c.List)
		}
	}
}

// WithInclude keeps only keys matching at least one of the glob patterns.
// Patterns are matched against the key relative to the listed prefix;
// "**" spans path segments.
func WithInclude(patterns ...string) scantypes.ListOption {
	return func(c *scantypes.ListConfig) {
		c.Include = append(c.Include, patterns...)
	}
}

// WithExclude drops keys matching any of the glob patterns.
func WithExclude(patterns ...string) scantypes.ListOption {
	return func(c *scantypes.ListConfig) {
		c.Exclude = append(c.Exclude, patterns...)
	}
}

// WithStartAfter lists only keys that sort after key.
func WithStartAfter(key string) scantypes.ListOption {
	return func(c *scantypes.ListConfig) {
		c.StartAfter = key
	}
}

// WithPageSize sets the number of keys requested per listing page (1-1000).
func WithPageSize(size int32) scantypes.ListOption {
	return func(c *scantypes.ListConfig) {
		c.PageSize = size
	}
}

// WithSkipEmpty drops zero-length objects from the listing.
func WithSkipEmpty(skip bool) scantypes.ListOption {
	return func(c *scantypes.ListConfig) {
		c.SkipEmpty = skip
	}
}
