// Package testutil provides test utilities and mocks for scan operations.
// This package is internal and should only be used for testing within the module.
package testutil

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/linescan/internal/s3api"
)

// MockS3Client is a mock implementation of the S3API interface for testing.
// It allows customization of each S3 operation through function fields.
type MockS3Client struct {
	GetObjectFunc     func(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2Func func(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// GetObject mocks the S3 GetObject operation.
func (m *MockS3Client) GetObject(
	ctx context.Context,
	params *s3.GetObjectInput,
	optFns ...func(*s3.Options),
) (*s3.GetObjectOutput, error) {
	if m.GetObjectFunc != nil {
		return m.GetObjectFunc(ctx, params, optFns...)
	}
	return &s3.GetObjectOutput{}, nil
}

// ListObjectsV2 mocks the S3 ListObjectsV2 operation.
func (m *MockS3Client) ListObjectsV2(
	ctx context.Context,
	params *s3.ListObjectsV2Input,
	optFns ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	if m.ListObjectsV2Func != nil {
		return m.ListObjectsV2Func(ctx, params, optFns...)
	}
	return &s3.ListObjectsV2Output{}, nil
}

// Ensure MockS3Client implements s3api.S3API interface
var _ s3api.S3API = (*MockS3Client)(nil)

// MockBuilder provides a fluent interface for building MockS3Client instances.
type MockBuilder struct {
	client *MockS3Client
}

// NewMockBuilder creates a new MockBuilder.
func NewMockBuilder() *MockBuilder {
	return &MockBuilder{client: &MockS3Client{}}
}

// Build returns the configured MockS3Client.
func (b *MockBuilder) Build() *MockS3Client {
	return b.client
}

// WithGetObject configures the GetObject behavior.
func (b *MockBuilder) WithGetObject(
	fn func(context.Context, *s3.GetObjectInput) (*s3.GetObjectOutput, error),
) *MockBuilder {
	b.client.GetObjectFunc = func(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		return fn(ctx, params)
	}
	return b
}

// WithListObjectsV2 configures the ListObjectsV2 behavior.
func (b *MockBuilder) WithListObjectsV2(
	fn func(context.Context, *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error),
) *MockBuilder {
	b.client.ListObjectsV2Func = func(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
		return fn(ctx, params)
	}
	return b
}

// WithGetObjectError configures GetObject to always fail with err.
func (b *MockBuilder) WithGetObjectError(err error) *MockBuilder {
	return b.WithGetObject(func(context.Context, *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		return nil, err
	})
}

// WithListObjectsV2Error configures ListObjectsV2 to always fail with err.
func (b *MockBuilder) WithListObjectsV2Error(err error) *MockBuilder {
	return b.WithListObjectsV2(func(context.Context, *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
		return nil, err
	})
}
