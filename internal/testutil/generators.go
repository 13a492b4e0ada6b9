// Package testutil provides test data generators.
package testutil

import (
	"fmt"
	"math/rand"
)

// TestDataGenerator provides methods for generating test data.
type TestDataGenerator struct {
	rand *rand.Rand
}

// NewTestDataGenerator creates a new test data generator with a seeded random source.
func NewTestDataGenerator(seed int64) *TestDataGenerator {
	return &TestDataGenerator{
		rand: rand.New(rand.NewSource(seed)),
	}
}

// Lines generates count lines tagged with the file name so that every line
// of a corpus is unique and its position can be recovered.
func (g *TestDataGenerator) Lines(file string, count int) []string {
	lines := make([]string, count)
	for i := range lines {
		lines[i] = fmt.Sprintf("%s:%06d:%x", file, i, g.rand.Uint32())
	}
	return lines
}

// Corpus generates files keys with a random number of lines between 0 and maxLines.
// Keys are laid out under prefix.
func (g *TestDataGenerator) Corpus(prefix string, files, maxLines int) map[string][]string {
	corpus := make(map[string][]string, files)
	for i := 0; i < files; i++ {
		key := fmt.Sprintf("%sfile-%04d.txt", prefix, i)
		corpus[key] = g.Lines(key, g.rand.Intn(maxLines+1))
	}
	return corpus
}

// Bucket stores a corpus in a new memory bucket.
func (g *TestDataGenerator) Bucket(name string, corpus map[string][]string) *MemoryBucket {
	b := NewMemoryBucket(name)
	for key, lines := range corpus {
		b.PutLines(key, lines...)
	}
	return b
}
