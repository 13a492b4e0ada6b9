package opener

import (
	"bufio"
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"

	"github.com/input-output-hk/catalyst-forge-libs/linescan/errors"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/scantypes"
)

// sniffLen is how many leading bytes are inspected to detect the encoding.
const sniffLen = 512

// Encoding is the compression format of a stream.
type Encoding string

const (
	// EncodingIdentity is an uncompressed stream.
	EncodingIdentity Encoding = "identity"
	// EncodingGzip is a gzip stream.
	EncodingGzip Encoding = "gzip"
	// EncodingZstd is a zstandard stream.
	EncodingZstd Encoding = "zstd"
	// EncodingZip is a zip archive whose entries are read one after another.
	EncodingZip Encoding = "zip"
)

// unsupported lists compressed formats that are recognized but cannot be read.
var unsupported = []string{"application/x-bzip2", "application/x-xz", "application/x-7z-compressed"}

// Detect returns the encoding of a stream from its leading bytes.
func Detect(head []byte) (Encoding, error) {
	if len(head) == 0 {
		return EncodingIdentity, nil
	}
	mt := mimetype.Detect(head)
	switch {
	case mt.Is("application/gzip"):
		return EncodingGzip, nil
	case mt.Is("application/zstd"):
		return EncodingZstd, nil
	case mt.Is("application/zip"):
		return EncodingZip, nil
	}
	for _, m := range unsupported {
		if mt.Is(m) {
			return "", fmt.Errorf("%w: %s", errors.ErrUnsupportedEncoding, mt.String())
		}
	}
	return EncodingIdentity, nil
}

// Decompress wraps next so that gzip and zstd objects are inflated on the fly.
// Zip archives are read into memory, as their directory sits at the end, and
// their entries are then streamed in order. Plain objects pass through unchanged.
func Decompress(next scantypes.Opener) scantypes.Opener {
	return scantypes.OpenerFunc(func(ctx context.Context, ref scantypes.FileRef) (io.ReadCloser, error) {
		rc, err := next.Open(ctx, ref)
		if err != nil {
			return nil, err
		}

		br := bufio.NewReaderSize(rc, sniffLen)
		head, err := br.Peek(sniffLen)
		if err != nil && !stderrors.Is(err, io.EOF) {
			_ = rc.Close()
			return nil, err
		}

		enc, err := Detect(head)
		if err != nil {
			_ = rc.Close()
			return nil, err
		}

		switch enc {
		case EncodingGzip:
			gz, err := gzip.NewReader(br)
			if err != nil {
				_ = rc.Close()
				return nil, fmt.Errorf("%w: %w", errors.ErrDecode, err)
			}
			return &stacked{Reader: gz, closers: []func() error{gz.Close, rc.Close}}, nil
		case EncodingZstd:
			zr, err := zstd.NewReader(br)
			if err != nil {
				_ = rc.Close()
				return nil, fmt.Errorf("%w: %w", errors.ErrDecode, err)
			}
			return &stacked{Reader: zr, closers: []func() error{
				func() error { zr.Close(); return nil },
				rc.Close,
			}}, nil
		case EncodingZip:
			return openZip(br, rc)
		default:
			return &stacked{Reader: br, closers: []func() error{rc.Close}}, nil
		}
	})
}

func openZip(r io.Reader, rc io.Closer) (io.ReadCloser, error) {
	data, err := io.ReadAll(r)
	closeErr := rc.Close()
	if err != nil {
		return nil, err
	}
	if closeErr != nil {
		return nil, closeErr
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrDecode, err)
	}
	e := &entries{}
	for _, f := range zr.File {
		if !f.FileInfo().IsDir() {
			e.files = append(e.files, f)
		}
	}
	return e, nil
}

// entries reads the regular files of a zip archive back to back. An entry
// that does not end in a newline gets one, so lines never span entries.
type entries struct {
	files []*zip.File
	cur   io.ReadCloser
	name  string
	last  byte
}

func (e *entries) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for {
		if e.cur == nil {
			if len(e.files) == 0 {
				return 0, io.EOF
			}
			f := e.files[0]
			e.files = e.files[1:]
			rc, err := f.Open()
			if err != nil {
				return 0, fmt.Errorf("%w: %s: %w", errors.ErrDecode, f.Name, err)
			}
			e.cur, e.name, e.last = rc, f.Name, '\n'
		}

		n, err := e.cur.Read(p)
		if n > 0 {
			e.last = p[n-1]
			return n, nil
		}
		if err == nil {
			continue
		}
		if !stderrors.Is(err, io.EOF) {
			return 0, fmt.Errorf("%w: %s: %w", errors.ErrDecode, e.name, err)
		}
		closeErr := e.cur.Close()
		e.cur = nil
		if closeErr != nil {
			return 0, fmt.Errorf("%w: %s: %w", errors.ErrDecode, e.name, closeErr)
		}
		if e.last != '\n' {
			e.last = '\n'
			p[0] = '\n'
			return 1, nil
		}
	}
}

func (e *entries) Close() error {
	e.files = nil
	if e.cur == nil {
		return nil
	}
	err := e.cur.Close()
	e.cur = nil
	return err
}

// stacked reads from the outermost reader and closes every layer in order.
type stacked struct {
	io.Reader
	closers []func() error
}

func (s *stacked) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
