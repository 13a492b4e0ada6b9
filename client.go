package linescan

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/linescan/errors"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/internal/opener"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/internal/s3api"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/internal/source"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/scantypes"
)

// Client scans objects stored in Amazon S3 or an S3-compatible endpoint.
// It is safe for concurrent use; every scan it starts is independent.
type Client struct {
	// s3Client is the underlying AWS SDK S3 client
	s3Client s3api.S3API

	// config holds the AWS configuration
	config aws.Config

	// logger is inherited by scans that do not set their own
	logger *slog.Logger

	// mu protects concurrent access to client configuration
	mu     sync.RWMutex
	closed bool
}

// New creates a new client with the provided options.
// It loads AWS credentials using the default credential chain
// and applies the specified configuration options.
//
// Example:
//
//	client, err := linescan.New(
//	    linescan.WithRegion("us-west-2"),
//	    linescan.WithMaxRetries(3),
//	)
func New(opts ...scantypes.Option) (*Client, error) {
	clientCfg := &scantypes.ClientConfig{
		MaxRetries: 3,
	}
	for _, opt := range opts {
		opt(clientCfg)
	}

	var cfg aws.Config
	var err error

	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		cfg, err = config.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
	}

	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	if clientCfg.MaxRetries > 0 {
		cfg.RetryMaxAttempts = clientCfg.MaxRetries
	}

	var s3Opts []func(*s3.Options)

	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	if clientCfg.Endpoint != "" {
		endpoint := clientCfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	switch {
	case clientCfg.CustomHTTPClient != nil:
		httpClient := clientCfg.CustomHTTPClient
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	case clientCfg.Timeout > 0:
		httpClient := &http.Client{
			Timeout: clientCfg.Timeout,
		}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	client := &Client{
		s3Client: s3.NewFromConfig(cfg, s3Opts...),
		config:   cfg,
		logger:   clientCfg.Logger,
	}
	if client.logger != nil {
		client.logger.Debug("client initialized", "region", cfg.Region, "endpoint", clientCfg.Endpoint)
	}
	return client, nil
}

// NewWithClient creates a client around a custom S3API implementation.
// This is primarily used for testing with mocked clients. Only WithLogger
// takes effect; the other client options configure the SDK client.
func NewWithClient(s3Client s3api.S3API, opts ...scantypes.Option) *Client {
	clientCfg := &scantypes.ClientConfig{}
	for _, opt := range opts {
		opt(clientCfg)
	}
	return &Client{
		s3Client: s3Client,
		config:   aws.Config{},
		logger:   clientCfg.Logger,
	}
}

// Region returns the AWS region the client was configured with.
func (c *Client) Region() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.Region
}

// Source returns a listing of the objects of bucket under prefix.
// The listing is lazy: pages are requested as the scan consumes them.
func (c *Client) Source(bucket, prefix string, opts ...scantypes.ListOption) (scantypes.Source, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, err
	}
	if err := validation.ValidatePrefix(prefix); err != nil {
		return nil, err
	}

	var cfg scantypes.ListConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := validation.ValidateListConfig(&cfg); err != nil {
		return nil, err
	}
	return source.NewS3(c.s3Client, bucket, prefix, cfg)
}

// Opener returns an opener that streams objects with GetObject.
func (c *Client) Opener() scantypes.Opener {
	return opener.NewS3(c.s3Client)
}

// Lines starts a scan of the lines of every object of bucket under prefix.
func (c *Client) Lines(ctx context.Context, bucket, prefix string, opts ...scantypes.ScanOption) (*Worker[string], error) {
	return Scan[string](ctx, c, bucket, prefix, Lines, opts...)
}

// Scan starts a scan of every object of bucket under prefix, decoding each
// line with dec. Listing options are given with WithListOptions.
func Scan[T any](
	ctx context.Context,
	c *Client,
	bucket, prefix string,
	dec Decoder[T],
	opts ...scantypes.ScanOption,
) (*Worker[T], error) {
	if c == nil {
		return nil, errors.NewError("scan", errors.ErrInvalidInput).WithMessage("client is required")
	}

	var probe scantypes.ScanConfig
	for _, opt := range opts {
		opt(&probe)
	}
	listOpts := []scantypes.ListOption{func(l *scantypes.ListConfig) { *l = probe.List }}

	src, err := c.Source(bucket, prefix, listOpts...)
	if err != nil {
		return nil, err
	}

	if probe.Logger == nil && c.logger != nil {
		opts = append([]scantypes.ScanOption{WithScanLogger(c.logger.With("bucket", bucket, "prefix", prefix))}, opts...)
	}
	return NewWorker(ctx, src, c.Opener(), dec, opts...)
}

// ScanJSON starts a scan decoding every line of every object as JSON into T.
func ScanJSON[T any](ctx context.Context, c *Client, bucket, prefix string, opts ...scantypes.ScanOption) (*Worker[T], error) {
	return Scan(ctx, c, bucket, prefix, JSONLines[T](), opts...)
}

// Close releases any resources held by the client. Scans already started
// are not affected; new ones fail with errors.ErrClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *Client) check() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.NewError("client", errors.ErrClosed)
	}
	return nil
}
