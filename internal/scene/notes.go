package scene

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/seaglass/internal/dynamo"
	"github.com/san-kum/seaglass/internal/notes"
	"github.com/san-kum/seaglass/internal/physics"
	"go.uber.org/zap"
)

var demoNotes = []struct {
	text     string
	category string
}{
	{"the smell of rain on warm stone", "memories"},
	{"call mum on sunday", "todo"},
	{"quiet, a little tired, mostly fine", "mood"},
	{"what if the sea remembers every boat", "thoughts"},
	{"water the basil", "todo"},
}

// AddNote creates a note, spawns its body and queues the store write.
func (s *Scene) AddNote(text, category string) (notes.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return notes.Note{}, dynamo.ErrDisposed
	}
	n := notes.New(s.owner, text, category, s.now())
	if err := s.spawn(n); err != nil {
		return notes.Note{}, err
	}
	if s.writable() {
		s.syncer.Create(n)
	}
	return n, nil
}

// UpdateNote replaces the text of a note. The body is untouched. Unknown
// ids are ignored.
func (s *Scene) UpdateNote(id, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return dynamo.ErrDisposed
	}
	n, ok := s.payload[id]
	if !ok {
		return nil
	}
	n.Text = text
	s.payload[id] = n
	if s.writable() {
		s.syncer.Update(s.owner, id, text)
	}
	return nil
}

// DeleteNote removes a note's body and visual. Deleting an unknown id is a
// no-op.
func (s *Scene) DeleteNote(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return dynamo.ErrDisposed
	}
	if _, ok := s.payload[id]; !ok {
		return nil
	}
	delete(s.payload, id)
	s.reg.RemoveBody(id)
	s.reg.Unmount(id)
	if s.writable() {
		s.syncer.Delete(s.owner, id)
	}
	return nil
}

// Load replaces every body with the owner's notes from the store, or with
// the demo set when there is no store. List failures are logged and leave
// the scene empty. A Load that starts while another is running returns
// immediately.
func (s *Scene) Load(ctx context.Context) error {
	if !s.loading.CompareAndSwap(false, true) {
		return nil
	}
	defer s.loading.Store(false)

	if s.Closed() {
		return dynamo.ErrDisposed
	}

	var seed []notes.Note
	if s.store == nil {
		seed = s.demo()
	} else {
		list, err := s.store.List(ctx, s.owner)
		if err != nil {
			s.log.Warn("load notes failed", zap.String("owner", s.owner), zap.Error(err))
		}
		seed = list
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return dynamo.ErrDisposed
	}
	s.reg.Clear()
	clear(s.payload)
	for _, n := range seed {
		if err := s.spawn(n.Normalize()); err != nil {
			s.log.Warn("seed note skipped", zap.String("note_id", n.ID), zap.Error(err))
		}
	}
	s.log.Info("notes loaded", zap.Int("count", s.reg.Len()), zap.Bool("demo", s.store == nil))
	return nil
}

func (s *Scene) demo() []notes.Note {
	base := s.now().Add(-time.Duration(len(demoNotes)) * time.Minute)
	out := make([]notes.Note, len(demoNotes))
	for i, d := range demoNotes {
		n := notes.New(s.owner, d.text, d.category, base.Add(time.Duration(i)*time.Minute))
		n.Color = notes.PastelFor(n.ID)
		out[i] = n
	}
	return out
}

func (s *Scene) writable() bool { return s.syncer != nil && s.owner != "" }

// spawn places a body for n at a random point of the play area with a
// random drift. Caller holds s.mu.
func (s *Scene) spawn(n notes.Note) error {
	cfg := s.cfg.Bodies
	r := cfg.RadiusMin + s.rng.Float64()*(cfg.RadiusMax-cfg.RadiusMin)
	area := s.bound.Area()
	spec := physics.BodySpec{
		ID:     n.ID,
		Pos:    dynamo.V(within(s.rng.Float64(), area.Left, area.Right, r), within(s.rng.Float64(), area.Top, area.Bottom, r)),
		Vel:    dynamo.V((s.rng.Float64()-0.5)*cfg.SpawnSpeed, (s.rng.Float64()-0.5)*cfg.SpawnSpeed),
		Radius: r,
	}
	if _, err := s.reg.AddBody(spec); err != nil {
		return fmt.Errorf("spawn note: %w", err)
	}
	s.payload[n.ID] = n
	return nil
}

// within maps u in [0,1) onto [lo+r, hi-r], or the midpoint when the span
// is narrower than the body.
func within(u, lo, hi, r float64) float64 {
	span := hi - lo - 2*r
	if span <= 0 {
		return (lo + hi) / 2
	}
	return lo + r + u*span
}
