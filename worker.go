package linescan

import (
	"bufio"
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/input-output-hk/catalyst-forge-libs/linescan/errors"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/internal/cache"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/internal/jitter"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/internal/opener"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/internal/pool"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/internal/queue"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/scantypes"
)

const (
	// DefaultMaxBuffer is the default number of records read per refill.
	DefaultMaxBuffer = 128

	// DefaultHandleWait is the default bound of the wait for a parked stream.
	DefaultHandleWait = 2 * time.Second

	// DefaultReadBufferSize is the default size of the reader around each stream.
	DefaultReadBufferSize = pool.MediumReaderSize
)

// Record is one decoded line together with the file it came from.
type Record[T any] = scantypes.Record[T]

// handle is an open stream owned by exactly one worker, or parked in the pool.
type handle struct {
	ref scantypes.FileRef
	rc  io.ReadCloser
	br  *bufio.Reader
}

// counters are the statistics shared by every worker of a scan.
type counters struct {
	workers   atomic.Int64
	claimed   atomic.Int64
	opened    atomic.Int64
	exhausted atomic.Int64
	reused    atomic.Int64
	refills   atomic.Int64
	records   atomic.Int64
}

// scan is the state shared by all workers of one split tree.
type scan[T any] struct {
	id     string
	cfg    scantypes.ScanConfig
	logger *slog.Logger

	srcMu   sync.Mutex
	src     scantypes.Source
	srcDone atomic.Bool

	open   scantypes.Opener
	cache  *cache.Cache
	decode Decoder[T]

	unopened *queue.Queue[scantypes.FileRef]
	handles  *queue.HandlePool[*handle]
	buffer   *queue.Buffer[Record[T]]

	// ctx scopes every opened stream; it ends when the scan is closed.
	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool

	stats counters
}

// Worker is one splittable, advanceable view of a scan.
//
// A Worker must be driven by one goroutine at a time. Different workers of
// the same scan may be driven concurrently.
type Worker[T any] struct {
	s      *scan[T]
	id     int64
	jitter *jitter.Jitter
	logger *slog.Logger
}

// NewWorker creates the root worker of a scan over the files yielded by src.
// Streams are obtained from op and decoded into records with dec.
//
// The context bounds the lifetime of the opened streams: cancelling it, or
// closing any worker of the scan, aborts every stream still open.
//
// Example:
//
//	root, err := linescan.NewWorker[string](ctx,
//	    linescan.SliceSource(refs...),
//	    linescan.DirOpener(fs),
//	    linescan.Lines,
//	    linescan.WithMaxBuffer(256),
//	)
func NewWorker[T any](
	ctx context.Context,
	src scantypes.Source,
	op scantypes.Opener,
	dec Decoder[T],
	opts ...scantypes.ScanOption,
) (*Worker[T], error) {
	if src == nil || op == nil || dec == nil {
		return nil, errors.NewError("scan", errors.ErrInvalidInput).
			WithMessage("source, opener and decoder are required")
	}

	cfg := defaultScanConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := validation.ValidateScanConfig(&cfg); err != nil {
		return nil, err
	}

	var c *cache.Cache
	if cfg.Cache != nil {
		c = cache.New(cfg.Cache,
			cache.WithSkipStaleCheck(cfg.SkipStaleCheck),
			cache.WithLogger(cfg.Logger),
		)
		op = c.Wrap(op)
	}
	if cfg.Decompress {
		op = opener.Decompress(op)
	}

	scanCtx, cancel := context.WithCancel(ctx)
	s := &scan[T]{
		id:       uuid.NewString(),
		cfg:      cfg,
		src:      src,
		open:     op,
		cache:    c,
		decode:   dec,
		unopened: queue.NewQueue[scantypes.FileRef](),
		handles:  queue.NewHandlePool[*handle](),
		buffer:   queue.NewBuffer[Record[T]](cfg.MaxBuffer),
		ctx:      scanCtx,
		cancel:   cancel,
	}
	if cfg.Logger != nil {
		s.logger = cfg.Logger.With("scan_id", s.id)
	}

	w := s.newWorker()
	if s.logger != nil {
		s.logger.DebugContext(ctx, "scan started",
			"max_buffer", cfg.MaxBuffer,
			"handle_wait", cfg.HandleWait,
			"fair_reuse", cfg.FairHandleReuse,
		)
	}
	return w, nil
}

func defaultScanConfig() scantypes.ScanConfig {
	return scantypes.ScanConfig{
		MaxBuffer:      DefaultMaxBuffer,
		HandleWait:     DefaultHandleWait,
		ReadBufferSize: DefaultReadBufferSize,
	}
}

func (s *scan[T]) newWorker() *Worker[T] {
	id := s.stats.workers.Add(1) - 1

	var j *jitter.Jitter
	if s.cfg.HasSeed {
		j = jitter.New(s.cfg.HandleWait, s.cfg.Seed+uint64(id))
	} else {
		j = jitter.NewRandom(s.cfg.HandleWait)
	}

	w := &Worker[T]{s: s, id: id, jitter: j}
	if s.logger != nil {
		w.logger = s.logger.With("worker", id)
	}
	return w
}

// ID returns the worker's index within its scan. The root worker is 0.
func (w *Worker[T]) ID() int64 {
	return w.id
}

// ScanID returns the identifier shared by every worker of the scan.
func (w *Worker[T]) ScanID() string {
	return w.s.id
}

// TrySplit moves the next file of the source to the queue of files waiting
// to be opened and returns a new worker sharing this worker's scan.
// It returns false, with no error, once the source is exhausted.
//
// The new worker is not bound to the file that was queued: any worker of
// the scan may end up opening it.
func (w *Worker[T]) TrySplit(ctx context.Context) (*Worker[T], bool, error) {
	s := w.s
	if s.closed.Load() {
		return nil, false, errors.NewError("split", errors.ErrClosed)
	}

	ref, ok, err := s.claim(ctx)
	if err != nil {
		return nil, false, wrapOp("split", err)
	}
	if !ok {
		return nil, false, nil
	}

	s.unopened.PushBack(ref)
	child := s.newWorker()
	if w.logger != nil {
		w.logger.DebugContext(ctx, "split", "key", ref.Key, "child", child.id)
	}
	return child, true, nil
}

// claim takes the next reference from the source. The source mutex is held
// only for the single call to Next.
func (s *scan[T]) claim(ctx context.Context) (scantypes.FileRef, bool, error) {
	if s.srcDone.Load() {
		return scantypes.FileRef{}, false, nil
	}

	s.srcMu.Lock()
	defer s.srcMu.Unlock()

	if s.srcDone.Load() {
		return scantypes.FileRef{}, false, nil
	}
	ref, ok, err := s.src.Next(ctx)
	if err != nil {
		return scantypes.FileRef{}, false, err
	}
	if !ok {
		s.srcDone.Store(true)
		return scantypes.FileRef{}, false, nil
	}
	s.stats.claimed.Add(1)
	return ref, true, nil
}

// Stats returns a snapshot of the counters shared by the scan.
func (w *Worker[T]) Stats() scantypes.Stats {
	c := &w.s.stats
	stats := scantypes.Stats{
		Workers:        c.workers.Load(),
		FilesClaimed:   c.claimed.Load(),
		FilesOpened:    c.opened.Load(),
		FilesExhausted: c.exhausted.Load(),
		HandlesReused:  c.reused.Load(),
		Refills:        c.refills.Load(),
		Records:        c.records.Load(),
	}
	if w.s.cache != nil {
		stats.CacheHits, stats.CacheFills = w.s.cache.Stats()
	}
	return stats
}

// Close abandons the scan for every worker that shares it. Parked streams
// are closed, buffered records are dropped and streams still being read by
// other workers are cancelled. Later calls to TrySplit and TryAdvance fail
// with errors.ErrClosed. Closing an already closed scan is a no-op.
func (w *Worker[T]) Close() error {
	s := w.s
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.cancel()

	var errs []error
	parked := s.handles.Close()
	for _, h := range parked {
		if err := s.release(h); err != nil {
			errs = append(errs, err)
		}
	}
	dropped := s.buffer.Clear()

	if closer, ok := s.src.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if s.logger != nil {
		s.logger.Debug("scan closed", "parked_handles", len(parked), "dropped_records", dropped)
	}
	return stderrors.Join(errs...)
}

// release closes a handle's stream and recycles its reader.
func (s *scan[T]) release(h *handle) error {
	err := h.rc.Close()
	pool.PutReader(h.br)
	h.br = nil
	if err != nil && s.logger != nil {
		s.logger.Warn("failed to close stream", "key", h.ref.Key, "error", err)
	}
	return err
}

// wrapOp tags err with op unless it already carries scan context.
func wrapOp(op string, err error) error {
	var scanErr *errors.Error
	if stderrors.As(err, &scanErr) {
		return err
	}
	return errors.NewError(op, err)
}
