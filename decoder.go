package linescan

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	scanerrors "github.com/input-output-hk/catalyst-forge-libs/linescan/errors"
)

// Decoder reads the next record from a stream.
// It returns io.EOF, and no record, once the stream holds no more records.
// Any other error is fatal for the file being read. A Decoder must not
// close the stream; the scan does that once io.EOF is reported.
type Decoder[T any] func(r *bufio.Reader) (T, error)

// Lines decodes UTF-8 text lines terminated by '\n'.
// The delimiter is not part of the record. A final line without a
// terminating '\n' is still returned.
func Lines(r *bufio.Reader) (string, error) {
	return Delimited('\n')(r)
}

// Delimited returns a decoder for records separated by delim.
func Delimited(delim byte) Decoder[string] {
	return func(r *bufio.Reader) (string, error) {
		line, err := r.ReadString(delim)
		switch {
		case err == nil:
			return line[:len(line)-1], nil
		case errors.Is(err, io.EOF) && line != "":
			return line, nil
		default:
			return "", err
		}
	}
}

// JSONLines returns a decoder for newline-delimited JSON values.
// Blank lines are skipped. A line that is not valid JSON for T fails with
// an error wrapping errors.ErrDecode.
func JSONLines[T any]() Decoder[T] {
	return func(r *bufio.Reader) (T, error) {
		var v T
		for {
			line, err := r.ReadBytes('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return v, err
			}
			trimmed := bytes.TrimSpace(line)
			if len(trimmed) == 0 {
				if err != nil {
					return v, io.EOF
				}
				continue
			}
			if uerr := json.Unmarshal(trimmed, &v); uerr != nil {
				return v, fmt.Errorf("%w: %w", scanerrors.ErrDecode, uerr)
			}
			return v, nil
		}
	}
}
