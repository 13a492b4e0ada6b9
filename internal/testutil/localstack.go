// Package testutil provides LocalStack integration test utilities.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/localstack"
	"github.com/testcontainers/testcontainers-go/wait"
)

// LocalStack is a running LocalStack container with S3 enabled.
type LocalStack struct {
	container *localstack.LocalStackContainer
	Endpoint  string
	Region    string
}

// StartLocalStack starts a LocalStack container and registers its termination
// with t.Cleanup. The test is skipped in short mode.
func StartLocalStack(t *testing.T) *LocalStack {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := localstack.Run(ctx,
		"localstack/localstack:latest",
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/_localstack/health").
				WithPort("4566").
				WithStartupTimeout(2*time.Minute),
		),
	)
	if err != nil {
		t.Fatalf("failed to start LocalStack container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate LocalStack container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "4566")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	return &LocalStack{
		container: container,
		Endpoint:  fmt.Sprintf("http://%s:%s", host, port.Port()),
		Region:    "us-east-1",
	}
}

// AWSConfig returns an AWS configuration with static test credentials.
func (l *LocalStack) AWSConfig(ctx context.Context) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(l.Region),
		config.WithCredentialsProvider(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) {
				return aws.Credentials{AccessKeyID: "test", SecretAccessKey: "test"}, nil
			})),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// S3Client returns an SDK client addressing the container with path-style URLs.
func (l *LocalStack) S3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := l.AWSConfig(ctx)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String(l.Endpoint)
	}), nil
}

// Seed creates bucket and uploads each object as newline-terminated lines.
func Seed(ctx context.Context, client *s3.Client, bucket string, objects map[string][]string) error {
	if _, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	for key, lines := range objects {
		body := strings.Join(lines, "\n")
		if len(lines) > 0 {
			body += "\n"
		}
		_, err := client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
			Body:   bytes.NewReader([]byte(body)),
		})
		if err != nil {
			return fmt.Errorf("failed to put %s: %w", key, err)
		}
	}
	return nil
}
