package physics

import (
	"fmt"

	"github.com/san-kum/seaglass/internal/config"
	"github.com/san-kum/seaglass/internal/dynamo"
)

type EventKind int

const (
	BodyAdded EventKind = iota
	BodyRemoved
	Cleared
)

func (k EventKind) String() string {
	switch k {
	case BodyAdded:
		return "added"
	case BodyRemoved:
		return "removed"
	case Cleared:
		return "cleared"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event reports a change to the registry's body set. ID is empty for Cleared.
type Event struct {
	Kind EventKind
	ID   string
}

type subscriber struct {
	id int
	fn func(Event)
}

// Registry is the sole owner of the shard bodies. Bodies are iterated in
// insertion order so seeded runs are reproducible. Visuals are a separate,
// non-owning mapping keyed by the same id.
type Registry struct {
	world   *World
	cfg     config.BodyConfig
	bodies  map[string]*Body
	order   []string
	visuals map[string]dynamo.Visual
	subs    []subscriber
	nextSub int
}

func NewRegistry(w *World, cfg config.BodyConfig) *Registry {
	return &Registry{
		world:   w,
		cfg:     cfg,
		bodies:  make(map[string]*Body),
		visuals: make(map[string]dynamo.Visual),
	}
}

func (r *Registry) World() *World { return r.world }

// Tune replaces the defaults used for bodies added from now on.
func (r *Registry) Tune(cfg config.BodyConfig) { r.cfg = cfg }

func (r *Registry) AddBody(spec BodySpec) (*Body, error) {
	if spec.ID == "" {
		return nil, fmt.Errorf("empty body id: %w", dynamo.ErrInvalidState)
	}
	if _, ok := r.bodies[spec.ID]; ok {
		return nil, &dynamo.BodyError{ID: spec.ID, Wrapped: dynamo.ErrDuplicateBody}
	}
	if spec.Radius <= 0 || !spec.Pos.IsValid() || !spec.Vel.IsValid() {
		return nil, &dynamo.BodyError{ID: spec.ID, Wrapped: dynamo.ErrInvalidState}
	}
	if spec.Restitution == 0 {
		spec.Restitution = r.cfg.Restitution
	}
	if spec.FrictionAir == 0 {
		spec.FrictionAir = r.cfg.FrictionAir
	}

	b := newBody(r.world, spec, r.cfg.Density)
	b.attach()
	r.bodies[spec.ID] = b
	r.order = append(r.order, spec.ID)
	r.notify(Event{Kind: BodyAdded, ID: spec.ID})
	return b, nil
}

// RemoveBody detaches the body from the world. Unknown ids are ignored.
func (r *Registry) RemoveBody(id string) bool {
	b, ok := r.bodies[id]
	if !ok {
		return false
	}
	b.detach()
	delete(r.bodies, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.notify(Event{Kind: BodyRemoved, ID: id})
	return true
}

// Clear removes every body. Mounted visuals are left to their owners.
func (r *Registry) Clear() {
	for _, id := range r.order {
		r.bodies[id].detach()
	}
	r.bodies = make(map[string]*Body)
	r.order = nil
	r.notify(Event{Kind: Cleared})
}

func (r *Registry) Body(id string) (*Body, bool) {
	b, ok := r.bodies[id]
	return b, ok
}

func (r *Registry) Len() int { return len(r.order) }

func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

func (r *Registry) Each(fn func(*Body)) {
	for _, id := range r.order {
		fn(r.bodies[id])
	}
}

func (r *Registry) States() []dynamo.BodyState {
	out := make([]dynamo.BodyState, 0, len(r.order))
	r.Each(func(b *Body) { out = append(out, b.State()) })
	return out
}

// Mount associates a visual with id. The body need not exist yet.
func (r *Registry) Mount(id string, v dynamo.Visual) {
	r.visuals[id] = v
}

func (r *Registry) Unmount(id string) {
	delete(r.visuals, id)
}

func (r *Registry) Visual(id string) (dynamo.Visual, bool) {
	v, ok := r.visuals[id]
	return v, ok
}

func (r *Registry) EachVisual(fn func(id string, v dynamo.Visual)) {
	for id, v := range r.visuals {
		fn(id, v)
	}
}

// Subscribe registers fn for body set changes and returns its cancel func.
func (r *Registry) Subscribe(fn func(Event)) func() {
	id := r.nextSub
	r.nextSub++
	r.subs = append(r.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range r.subs {
			if s.id == id {
				r.subs = append(r.subs[:i], r.subs[i+1:]...)
				return
			}
		}
	}
}

func (r *Registry) notify(ev Event) {
	for _, s := range r.subs {
		s.fn(ev)
	}
}
