// Package scene wires the shard simulation together.
//
// A Scene owns one physics world with its registry and boundary, the
// autonomous field, the gravity controller, the tap dispatcher and the
// render synchronizer. Note records are attached 1:1 to bodies by id; the
// registry stays the source of truth and the note list handed to the UI is
// a projection kept current by registry events.
//
// All exported methods are safe to call from any goroutine. In the live
// front-end they are posted onto the frame loop so they interleave with the
// periodic tasks instead of racing them.
package scene

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/san-kum/seaglass/internal/config"
	"github.com/san-kum/seaglass/internal/control"
	"github.com/san-kum/seaglass/internal/dynamo"
	"github.com/san-kum/seaglass/internal/frame"
	"github.com/san-kum/seaglass/internal/gravity"
	"github.com/san-kum/seaglass/internal/interact"
	"github.com/san-kum/seaglass/internal/notes"
	"github.com/san-kum/seaglass/internal/physics"
	"github.com/san-kum/seaglass/internal/render"
	"go.uber.org/zap"
)

const (
	DefaultWidth  = 800.0
	DefaultHeight = 600.0

	closeTimeout = 5 * time.Second
)

type Options struct {
	Config *config.Config
	// Owner is the signed-in user. Store writes are skipped while it is empty.
	Owner string
	// Store is the persistence collaborator. Nil means a demo scene.
	Store     notes.Store
	Projector render.Projector
	Logger    *zap.Logger
	// Rand overrides the source seeded from Config.Seed.
	Rand   *rand.Rand
	Now    func() time.Time
	Width  float64
	Height float64
}

type Scene struct {
	mu  sync.Mutex
	cfg *config.Config
	log *zap.Logger
	now func() time.Time
	rng *rand.Rand

	owner  string
	store  notes.Store
	syncer *notes.Syncer

	world  *physics.World
	reg    *physics.Registry
	bound  *physics.Boundary
	field  *control.Field
	grav   *gravity.Controller
	taps   *interact.Dispatcher
	mirror *render.Synchronizer

	payload map[string]notes.Note
	shown   map[string]bool

	width, height float64
	scope         frame.Scope
	started       bool
	closed        bool
	loading       atomic.Bool
}

func New(opts Options) (*Scene, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scene config: %w", err)
	}
	cfg = cfg.Clone()

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	w, h := opts.Width, opts.Height
	if w <= 0 || h <= 0 {
		w, h = DefaultWidth, DefaultHeight
	}

	world := physics.NewWorld(cfg.Timing, cfg.Gravity)
	reg := physics.NewRegistry(world, cfg.Bodies)
	field, err := control.NewField(reg, cfg.Field, rng)
	if err != nil {
		return nil, fmt.Errorf("scene field: %w", err)
	}
	world.BeforeStep(field.Apply)

	s := &Scene{
		cfg:     cfg,
		log:     log.Named("scene"),
		now:     now,
		rng:     rng,
		owner:   opts.Owner,
		store:   opts.Store,
		world:   world,
		reg:     reg,
		bound:   physics.NewBoundary(world, cfg.Boundary),
		field:   field,
		grav:    gravity.New(world, cfg.Gravity),
		taps:    interact.New(reg, cfg.Interaction),
		mirror:  render.NewSynchronizer(reg),
		payload: make(map[string]notes.Note),
		shown:   make(map[string]bool),
	}
	if opts.Store != nil {
		s.syncer = notes.NewSyncer(opts.Store, log)
	}
	if _, err := s.bound.Rebuild(w, h); err != nil {
		return nil, fmt.Errorf("scene boundary: %w", err)
	}
	s.width, s.height = w, h

	s.scope.Add(reg.Subscribe(s.project))
	if opts.Projector != nil {
		s.scope.Add(render.Bind(reg, opts.Projector))
	}
	s.scope.Add(s.bound.Remove)
	return s, nil
}

// project keeps the note list in step with the registry.
func (s *Scene) project(ev physics.Event) {
	switch ev.Kind {
	case physics.BodyAdded:
		s.shown[ev.ID] = true
	case physics.BodyRemoved:
		delete(s.shown, ev.ID)
	case physics.Cleared:
		clear(s.shown)
	}
}

// Start registers the physics step, gravity smoothing and render sync on
// sched. The tasks are cancelled by Close.
func (s *Scene) Start(sched *frame.Scheduler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return dynamo.ErrDisposed
	}
	if s.started {
		return nil
	}
	s.started = true

	step := sched.Every("physics", s.cfg.Timing.StepInterval(), func(time.Time) { s.Step() })
	smooth := sched.Every("gravity", s.cfg.Timing.FrameInterval(), func(now time.Time) { s.smooth(now) })
	paint := sched.Every("render", s.cfg.Timing.FrameInterval(), func(time.Time) { s.Render() })
	s.scope.Add(step.Cancel)
	s.scope.Add(smooth.Cancel)
	s.scope.Add(paint.Cancel)
	s.log.Info("scene started",
		zap.Int("bodies", s.reg.Len()),
		zap.Duration("step", s.cfg.Timing.StepInterval()),
		zap.Duration("frame", s.cfg.Timing.FrameInterval()))
	return nil
}

// Step advances the world one tick, running the field first.
func (s *Scene) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.world.Step()
}

func (s *Scene) smooth(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.grav.Smooth()
	s.taps.Sweep(now)
}

// Render mirrors body transforms onto the projector and returns how many
// were written.
func (s *Scene) Render() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0
	}
	return s.mirror.Sync()
}

// Advance runs n steps, each followed by one gravity and render frame. It
// drives headless runs at a fixed 1:1 cadence.
func (s *Scene) Advance(n int) {
	for range n {
		s.Step()
		s.smooth(s.now())
		s.Render()
	}
}

func (s *Scene) Resize(width, height float64) (dynamo.Rect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return dynamo.Rect{}, dynamo.ErrDisposed
	}
	area, err := s.bound.Rebuild(width, height)
	if err != nil {
		return s.bound.Area(), fmt.Errorf("resize %gx%g: %w", width, height, err)
	}
	s.width, s.height = width, height
	s.log.Debug("boundary rebuilt", zap.Float64("width", width), zap.Float64("height", height))
	return area, nil
}

// Tap pushes bodies around p unless the event came from a control surface.
func (s *Scene) Tap(p dynamo.Vec, origin interact.Origin) ([]interact.Push, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, dynamo.ErrDisposed
	}
	pushes, _ := s.taps.Tap(p, origin, s.now())
	return pushes, nil
}

func (s *Scene) Orient(beta, gamma float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return dynamo.ErrDisposed
	}
	s.grav.Orient(beta, gamma)
	return nil
}

// SetMotion toggles orientation-driven gravity.
func (s *Scene) SetMotion(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return dynamo.ErrDisposed
	}
	s.grav.SetEnabled(on)
	return nil
}

// Tune applies a new profile to the running scene. Existing bodies keep
// their radius, restitution and air friction. A rejected profile leaves the
// scene as it was.
func (s *Scene) Tune(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("tune: no profile: %w", dynamo.ErrParameterBounds)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	gov, err := control.NewGovernor(cfg.Field)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return dynamo.ErrDisposed
	}
	s.bound.Tune(cfg.Boundary)
	if _, err := s.bound.Rebuild(s.width, s.height); err != nil {
		s.bound.Tune(s.cfg.Boundary)
		return err
	}
	s.field.Use(gov, cfg.Field.Current)
	s.world.Tune(cfg.Timing, cfg.Gravity)
	s.reg.Tune(cfg.Bodies)
	s.grav.Tune(cfg.Gravity)
	s.taps.Tune(cfg.Interaction)
	s.cfg = cfg.Clone()
	s.log.Info("profile applied", zap.String("profile", cfg.Profile), zap.String("governor", cfg.Field.Governor))
	return nil
}

// Close tears down every task, listener and projector binding together and
// flushes pending store writes. It is idempotent.
func (s *Scene) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.scope.Close()
	s.mu.Unlock()

	if s.syncer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := s.syncer.Close(ctx); err != nil {
		return fmt.Errorf("flush store writes: %w", err)
	}
	return nil
}

func (s *Scene) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Scene) Config() *config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Clone()
}

// States snapshots every dynamic body in registry order.
func (s *Scene) States() []dynamo.BodyState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.States()
}

func (s *Scene) Area() dynamo.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bound.Area()
}

func (s *Scene) Walls() []dynamo.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bound.Walls()
}

func (s *Scene) Ripples() []interact.Ripple {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.taps.Ripples(s.now())
}

// Gravity reports the target and smoothed gravity vectors.
func (s *Scene) Gravity() (target, current dynamo.Vec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grav.Target(), s.grav.Current()
}

func (s *Scene) Motion() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grav.Enabled()
}

func (s *Scene) Steps() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Steps()
}

// WithBody runs fn with the live body for id while holding the scene lock.
// It reports false when no such body exists.
func (s *Scene) WithBody(id string, fn func(*physics.Body)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.reg.Body(id)
	if ok {
		fn(b)
	}
	return ok
}

// Notes returns the notes that currently have a body, oldest first.
func (s *Scene) Notes() []notes.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]notes.Note, 0, len(s.shown))
	for id := range s.shown {
		if n, ok := s.payload[id]; ok {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
