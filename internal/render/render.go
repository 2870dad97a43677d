// Package render mirrors simulation state onto visual outputs.
//
// The synchronizer only reads bodies. Outputs implement [Projector]; a
// [Handle] binds one body id on a projector and is what gets mounted in the
// physics registry.
package render

import (
	"github.com/san-kum/seaglass/internal/dynamo"
	"github.com/san-kum/seaglass/internal/physics"
)

type Projector interface {
	Project(id string, pos dynamo.Vec, angle float64)
}

// Handle satisfies dynamo.Visual for a single id.
type Handle struct {
	ID string
	P  Projector
}

func (h Handle) SetTransform(pos dynamo.Vec, angle float64) { h.P.Project(h.ID, pos, angle) }

type Synchronizer struct {
	reg    *physics.Registry
	frames uint64
}

func NewSynchronizer(reg *physics.Registry) *Synchronizer {
	return &Synchronizer{reg: reg}
}

// Sync writes every mounted body's transform to its visual and returns how
// many were written. Visuals without a body are skipped.
func (s *Synchronizer) Sync() int {
	n := 0
	s.reg.EachVisual(func(id string, v dynamo.Visual) {
		b, ok := s.reg.Body(id)
		if !ok {
			return
		}
		v.SetTransform(b.Position(), b.Angle())
		n++
	})
	s.frames++
	return n
}

func (s *Synchronizer) Frames() uint64 { return s.frames }

// Bind mounts a handle on p for every current and future body and unmounts
// it when the body goes away. The returned func stops following the
// registry and unmounts everything Bind mounted.
func Bind(reg *physics.Registry, p Projector) func() {
	mounted := map[string]bool{}
	mount := func(id string) {
		reg.Mount(id, Handle{ID: id, P: p})
		mounted[id] = true
	}
	unmount := func(id string) {
		if mounted[id] {
			reg.Unmount(id)
			delete(mounted, id)
		}
	}

	for _, id := range reg.IDs() {
		mount(id)
	}
	cancel := reg.Subscribe(func(ev physics.Event) {
		switch ev.Kind {
		case physics.BodyAdded:
			mount(ev.ID)
		case physics.BodyRemoved:
			unmount(ev.ID)
		case physics.Cleared:
			for id := range mounted {
				unmount(id)
			}
		}
	})
	return func() {
		cancel()
		for id := range mounted {
			unmount(id)
		}
	}
}
