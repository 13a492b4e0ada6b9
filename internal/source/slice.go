package source

import (
	"context"

	"github.com/input-output-hk/catalyst-forge-libs/linescan/scantypes"
)

// Slice serves a fixed list of references in order.
type Slice struct {
	refs []scantypes.FileRef
}

// NewSlice creates a source over a copy of refs.
func NewSlice(refs ...scantypes.FileRef) *Slice {
	return &Slice{refs: append([]scantypes.FileRef(nil), refs...)}
}

// Next returns the next reference.
func (s *Slice) Next(context.Context) (scantypes.FileRef, bool, error) {
	if len(s.refs) == 0 {
		return scantypes.FileRef{}, false, nil
	}
	ref := s.refs[0]
	s.refs = s.refs[1:]
	return ref, true, nil
}

// Remaining returns the number of references not yet served.
func (s *Slice) Remaining() int {
	return len(s.refs)
}
