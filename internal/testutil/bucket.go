package testutil

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// MemoryBucket is an in-memory bucket served through a MockS3Client.
// Listing honors Prefix, StartAfter, MaxKeys and continuation tokens the way
// S3 does. Every GetObject and ListObjectsV2 call is counted.
type MemoryBucket struct {
	Name string

	mu       sync.Mutex
	objects  map[string][]byte
	modified map[string]time.Time
	gets     map[string]int
	lists    int
}

// NewMemoryBucket creates an empty bucket.
func NewMemoryBucket(name string) *MemoryBucket {
	return &MemoryBucket{
		Name:     name,
		objects:  make(map[string][]byte),
		modified: make(map[string]time.Time),
		gets:     make(map[string]int),
	}
}

// Put stores an object.
func (b *MemoryBucket) Put(key string, data []byte) *MemoryBucket {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	b.modified[key] = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(len(b.objects)) * time.Minute)
	return b
}

// PutLines stores an object made of the given lines, each terminated by "\n".
func (b *MemoryBucket) PutLines(key string, lines ...string) *MemoryBucket {
	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	return b.Put(key, buf.Bytes())
}

// Gets returns how many times key was fetched.
func (b *MemoryBucket) Gets(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gets[key]
}

// TotalGets returns the number of GetObject calls across all keys.
func (b *MemoryBucket) TotalGets() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, n := range b.gets {
		total += n
	}
	return total
}

// Lists returns the number of ListObjectsV2 calls.
func (b *MemoryBucket) Lists() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lists
}

// Client returns a mock S3 client serving this bucket.
func (b *MemoryBucket) Client() *MockS3Client {
	return NewMockBuilder().
		WithListObjectsV2(b.list).
		WithGetObject(b.get).
		Build()
}

func (b *MemoryBucket) list(_ context.Context, in *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lists++

	if aws.ToString(in.Bucket) != b.Name {
		return nil, &types.NoSuchBucket{Message: aws.String("no such bucket")}
	}

	prefix := aws.ToString(in.Prefix)
	keys := make([]string, 0, len(b.objects))
	for k := range b.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if token := aws.ToString(in.ContinuationToken); token != "" {
		start, _ = strconv.Atoi(token)
	} else if after := aws.ToString(in.StartAfter); after != "" {
		start = sort.SearchStrings(keys, after)
		if start < len(keys) && keys[start] == after {
			start++
		}
	}

	maxKeys := int(aws.ToInt32(in.MaxKeys))
	if maxKeys <= 0 || maxKeys > 1000 {
		maxKeys = 1000
	}
	end := min(start+maxKeys, len(keys))

	out := &s3.ListObjectsV2Output{
		Name:        aws.String(b.Name),
		Prefix:      aws.String(prefix),
		KeyCount:    aws.Int32(int32(end - start)),
		IsTruncated: aws.Bool(end < len(keys)),
	}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, CreateTestObject(k, int64(len(b.objects[k])), b.modified[k]))
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func (b *MemoryBucket) get(_ context.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if aws.ToString(in.Bucket) != b.Name {
		return nil, &types.NoSuchBucket{Message: aws.String("no such bucket")}
	}
	key := aws.ToString(in.Key)
	data, ok := b.objects[key]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("no such key")}
	}
	b.gets[key]++
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
		LastModified:  aws.Time(b.modified[key]),
	}, nil
}
