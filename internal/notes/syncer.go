package notes

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type OpKind string

const (
	OpCreate OpKind = "create"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
)

type op struct {
	kind  OpKind
	note  Note
	owner string
	id    string
	text  string
}

const (
	defaultQueue   = 64
	defaultTimeout = 10 * time.Second
)

// Syncer forwards local mutations to a Store in the background. Calls never
// block the caller and failures are only logged: local state stays
// authoritative.
type Syncer struct {
	store   Store
	log     *zap.Logger
	timeout time.Duration
	ops     chan op
	done    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc

	mu     sync.RWMutex
	closed bool

	failures atomic.Int64
	applied  atomic.Int64
}

func NewSyncer(store Store, log *zap.Logger) *Syncer {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Syncer{
		store:   store,
		log:     log.Named("syncer"),
		timeout: defaultTimeout,
		ops:     make(chan op, defaultQueue),
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
	go s.loop()
	return s
}

func (s *Syncer) Create(n Note) { s.enqueue(op{kind: OpCreate, note: n, owner: n.Owner, id: n.ID}) }

func (s *Syncer) Update(owner, id, text string) {
	s.enqueue(op{kind: OpUpdate, owner: owner, id: id, text: text})
}

func (s *Syncer) Delete(owner, id string) { s.enqueue(op{kind: OpDelete, owner: owner, id: id}) }

// Failures counts store calls that returned an error.
func (s *Syncer) Failures() int64 { return s.failures.Load() }

// Applied counts store calls that succeeded.
func (s *Syncer) Applied() int64 { return s.applied.Load() }

func (s *Syncer) enqueue(o op) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.log.Warn("sync after close dropped", zap.String("op", string(o.kind)), zap.String("note_id", o.id))
		return
	}
	select {
	case s.ops <- o:
	default:
		s.failures.Add(1)
		s.log.Warn("sync queue full, dropped", zap.String("op", string(o.kind)), zap.String("note_id", o.id))
	}
}

func (s *Syncer) loop() {
	defer close(s.done)
	for o := range s.ops {
		s.apply(o)
	}
}

func (s *Syncer) apply(o op) {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	var err error
	switch o.kind {
	case OpCreate:
		err = s.store.Create(ctx, o.note)
	case OpUpdate:
		err = s.store.Update(ctx, o.owner, o.id, o.text)
	case OpDelete:
		err = s.store.Delete(ctx, o.owner, o.id)
	}
	if err != nil {
		s.failures.Add(1)
		s.log.Warn("store write failed", zap.String("op", string(o.kind)), zap.String("note_id", o.id), zap.Error(err))
		return
	}
	s.applied.Add(1)
	s.log.Debug("store write", zap.String("op", string(o.kind)), zap.String("note_id", o.id))
}

// Close stops accepting work and waits for queued writes, abandoning any
// still running when ctx ends.
func (s *Syncer) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return nil
	}
	s.closed = true
	close(s.ops)
	s.mu.Unlock()

	select {
	case <-s.done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		<-s.done
		return ctx.Err()
	}
}
