package source

import (
	"context"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/input-output-hk/catalyst-forge-libs/linescan/errors"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/internal/filter"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/scantypes"
)

// Dir lists the regular files below a directory of a billy filesystem.
// The tree is walked once, on the first call to Next, and served in key order.
type Dir struct {
	fs      billy.Filesystem
	root    string
	cfg     scantypes.ListConfig
	matcher *filter.Matcher

	refs   []scantypes.FileRef
	loaded bool
}

// NewDir creates a listing of root within fsys. An empty root lists the whole filesystem.
func NewDir(fsys billy.Filesystem, root string, cfg scantypes.ListConfig) (*Dir, error) {
	matcher, err := filter.New(cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, errors.NewBucketError("list", root, err).WithMessage("invalid filter")
	}
	return &Dir{
		fs:      fsys,
		root:    cleanRoot(root),
		cfg:     cfg,
		matcher: matcher,
	}, nil
}

func cleanRoot(root string) string {
	return path.Clean("/" + root)
}

// label names the listed tree in file references.
func (d *Dir) label() string {
	if rel := strings.TrimPrefix(d.root, "/"); rel != "" {
		return rel
	}
	return "."
}

// Next returns the next matching file.
func (d *Dir) Next(ctx context.Context) (scantypes.FileRef, bool, error) {
	if !d.loaded {
		if err := d.load(ctx); err != nil {
			return scantypes.FileRef{}, false, err
		}
		d.loaded = true
	}
	if len(d.refs) == 0 {
		return scantypes.FileRef{}, false, nil
	}
	ref := d.refs[0]
	d.refs = d.refs[1:]
	return ref, true, nil
}

func (d *Dir) load(ctx context.Context) error {
	rel := strings.TrimPrefix(d.root, "/")
	prefix := ""
	if rel != "" {
		prefix = rel + "/"
	}

	err := util.Walk(d.fs, d.root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		key := strings.TrimPrefix(path.Clean("/"+p), "/")
		if d.cfg.StartAfter != "" && key <= d.cfg.StartAfter {
			return nil
		}
		ref := scantypes.FileRef{
			Bucket:       d.label(),
			Key:          key,
			Size:         info.Size(),
			LastModified: info.ModTime(),
		}
		if keep(ref, prefix, d.cfg, d.matcher) {
			d.refs = append(d.refs, ref)
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			err = errors.ErrBucketNotFound
		}
		return errors.NewBucketError("list", d.label(), err)
	}

	sort.Slice(d.refs, func(i, j int) bool { return d.refs[i].Key < d.refs[j].Key })
	return nil
}
