package pool

import (
	"bufio"
	"io"
	"sync"
)

const (
	// SmallReaderSize defines the size for small read buffers (4KB)
	SmallReaderSize = 4 * 1024
	// MediumReaderSize defines the size for medium read buffers (64KB)
	MediumReaderSize = 64 * 1024
	// LargeReaderSize defines the size for large read buffers (1MB)
	LargeReaderSize = 1024 * 1024
)

// ReaderPool manages reusable buffered readers of different sizes.
type ReaderPool struct {
	small  *sync.Pool
	medium *sync.Pool
	large  *sync.Pool
}

func newClass(size int) *sync.Pool {
	return &sync.Pool{
		New: func() any {
			return bufio.NewReaderSize(nil, size)
		},
	}
}

// NewReaderPool creates a new reader pool with the default size classes.
func NewReaderPool() *ReaderPool {
	return &ReaderPool{
		small:  newClass(SmallReaderSize),
		medium: newClass(MediumReaderSize),
		large:  newClass(LargeReaderSize),
	}
}

// classFor returns the pool serving readers of at least size bytes,
// or nil when size is larger than every class.
func (rp *ReaderPool) classFor(size int) *sync.Pool {
	switch {
	case size <= SmallReaderSize:
		return rp.small
	case size <= MediumReaderSize:
		return rp.medium
	case size <= LargeReaderSize:
		return rp.large
	default:
		return nil
	}
}

// Get returns a buffered reader over r with a buffer of at least size bytes.
// The caller is responsible for calling Put once the reader is done.
func (rp *ReaderPool) Get(r io.Reader, size int) *bufio.Reader {
	class := rp.classFor(size)
	if class == nil {
		return bufio.NewReaderSize(r, size)
	}
	br := class.Get().(*bufio.Reader)
	br.Reset(r)
	return br
}

// Put returns a reader to the pool matching its buffer size.
// Readers of non-standard sizes are dropped.
func (rp *ReaderPool) Put(br *bufio.Reader) {
	if br == nil {
		return
	}
	var class *sync.Pool
	switch br.Size() {
	case SmallReaderSize:
		class = rp.small
	case MediumReaderSize:
		class = rp.medium
	case LargeReaderSize:
		class = rp.large
	default:
		return
	}
	// Drop the reference to the stream so it can be collected.
	br.Reset(nil)
	class.Put(br)
}

var globalReaderPool = NewReaderPool()

// GetReader returns a buffered reader from the global pool.
func GetReader(r io.Reader, size int) *bufio.Reader {
	return globalReaderPool.Get(r, size)
}

// PutReader returns a buffered reader to the global pool.
func PutReader(br *bufio.Reader) {
	globalReaderPool.Put(br)
}
