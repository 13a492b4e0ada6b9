package opener

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-git/go-billy/v5"

	"github.com/input-output-hk/catalyst-forge-libs/linescan/errors"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/scantypes"
)

// Dir opens files of a billy filesystem by key.
type Dir struct {
	fs billy.Filesystem
}

// NewDir creates a filesystem opener.
func NewDir(fsys billy.Filesystem) *Dir {
	return &Dir{fs: fsys}
}

// Open opens ref.Key for reading.
func (o *Dir) Open(_ context.Context, ref scantypes.FileRef) (io.ReadCloser, error) {
	f, err := o.fs.Open(ref.Key)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %w", errors.ErrObjectNotFound, err)
		}
		return nil, err
	}
	return f, nil
}
