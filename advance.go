package linescan

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/input-output-hk/catalyst-forge-libs/linescan/errors"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/internal/pool"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/internal/queue"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/scantypes"
)

// TryAdvance returns the next record of the scan.
//
// It returns false, with no error, once this worker can find no more work:
// the buffer is empty, no parked stream turned up within the randomized
// wait, and no file is left to open. Other workers may still be finishing
// files they hold at that moment.
//
// Errors are fatal for the call that reports them:
//   - cancellation of ctx while waiting for a parked stream yields an error
//     wrapping errors.ErrInterrupted
//   - a failure to open, read or decode a file closes that file and yields
//     an *errors.Error naming it, with Op "open", "read" or "decode"
//   - a closed scan yields errors.ErrClosed
func (w *Worker[T]) TryAdvance(ctx context.Context) (Record[T], bool, error) {
	s := w.s
	var zero Record[T]

	for {
		if s.closed.Load() {
			return zero, false, errors.NewError("advance", errors.ErrClosed)
		}

		if rec, ok := s.buffer.Pop(); ok {
			s.stats.records.Add(1)
			return rec, true, nil
		}

		h, ok, err := s.handles.Poll(ctx, w.jitter.Next())
		switch {
		case stderrors.Is(err, queue.ErrClosed):
			return zero, false, errors.NewError("advance", errors.ErrClosed)
		case err != nil:
			return zero, false, errors.NewError("advance", fmt.Errorf("%w: %w", errors.ErrInterrupted, err))
		}

		if ok {
			s.stats.reused.Add(1)
		} else {
			h, ok, err = w.openNext(ctx)
			if err != nil {
				return zero, false, err
			}
			if !ok {
				if w.logger != nil {
					w.logger.DebugContext(ctx, "worker exhausted")
				}
				return zero, false, nil
			}
		}

		if err := w.refill(ctx, h); err != nil {
			return zero, false, err
		}
	}
}

// openNext opens the next waiting file, claiming one from the source when
// the queue is empty.
func (w *Worker[T]) openNext(ctx context.Context) (*handle, bool, error) {
	s := w.s

	ref, ok := s.unopened.PopFront()
	if !ok {
		var err error
		ref, ok, err = s.claim(ctx)
		if err != nil {
			return nil, false, wrapOp("advance", err)
		}
		if !ok {
			return nil, false, nil
		}
	}

	// Streams outlive this call and move between workers, so they are bound
	// to the scan rather than to ctx.
	rc, err := s.open.Open(s.ctx, ref)
	if err != nil {
		if s.closed.Load() {
			return nil, false, errors.NewError("advance", errors.ErrClosed)
		}
		return nil, false, errors.NewObjectError("open", ref.Bucket, ref.Key, err)
	}
	s.stats.opened.Add(1)

	if w.logger != nil {
		w.logger.DebugContext(ctx, "opened file", "key", ref.Key, "size", ref.Size)
	}
	return &handle{
		ref: ref,
		rc:  rc,
		br:  pool.GetReader(rc, s.cfg.ReadBufferSize),
	}, true, nil
}

// refill decodes up to MaxBuffer records from h into the shared buffer.
// A stream that reaches its end, or fails, is closed; otherwise it is
// parked again for whichever worker polls next.
func (w *Worker[T]) refill(ctx context.Context, h *handle) error {
	s := w.s
	s.stats.refills.Add(1)

	for i := 0; i < s.cfg.MaxBuffer; i++ {
		line, err := s.decode(h.br)
		if err == nil {
			s.buffer.Push(scantypes.Record[T]{File: h.ref, Line: line})
			continue
		}

		_ = s.release(h)
		if stderrors.Is(err, io.EOF) {
			s.stats.exhausted.Add(1)
			if w.logger != nil {
				w.logger.DebugContext(ctx, "file exhausted", "key", h.ref.Key)
			}
			return nil
		}
		if s.closed.Load() {
			return errors.NewError("advance", errors.ErrClosed)
		}
		op := "read"
		if stderrors.Is(err, errors.ErrDecode) {
			op = "decode"
		}
		if w.logger != nil {
			w.logger.ErrorContext(ctx, "failed to read file", "key", h.ref.Key, "error", err)
		}
		return errors.NewObjectError(op, h.ref.Bucket, h.ref.Key, err)
	}

	var parked bool
	if s.cfg.FairHandleReuse {
		parked = s.handles.PushBack(h)
	} else {
		parked = s.handles.PushFront(h)
	}
	if !parked {
		// The scan was closed while this worker held the stream.
		_ = s.release(h)
	}
	return nil
}
