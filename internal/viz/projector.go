package viz

import (
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/seaglass/internal/dynamo"
	"github.com/san-kum/seaglass/internal/interact"
)

// Shape is what the canvas needs to know about a shard beyond its transform.
type Shape struct {
	Radius float64
	Tint   lipgloss.Color
}

type mark struct {
	pos   dynamo.Vec
	angle float64
}

// CanvasProjector receives transforms from the render synchronizer on the
// frame loop and paints them on demand from the UI goroutine.
type CanvasProjector struct {
	mu    sync.Mutex
	marks map[string]mark
	ring  *dynamo.Ring
}

func NewCanvasProjector() *CanvasProjector {
	return &CanvasProjector{marks: make(map[string]mark), ring: dynamo.DefaultRing}
}

func (p *CanvasProjector) Project(id string, pos dynamo.Vec, angle float64) {
	p.mu.Lock()
	p.marks[id] = mark{pos: pos, angle: angle}
	p.mu.Unlock()
}

func (p *CanvasProjector) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.marks)
}

// Frame is everything Paint draws besides the projected marks. View is the
// scene viewport the canvas covers.
type Frame struct {
	View    dynamo.Rect
	Area    dynamo.Rect
	Shapes  map[string]Shape
	Ripples []interact.Ripple
	Now     time.Time
	Theme   Theme
}

// Paint clears c and draws the play area, the live ripples and every
// projected shard listed in f.Shapes. Marks without a shape belong to
// removed bodies and are dropped.
func (p *CanvasProjector) Paint(c *Canvas, f Frame) {
	c.Clear()
	if f.View.Empty() {
		return
	}
	w, h := c.Dots()
	sx, sy := float64(w)/f.View.Width(), float64(h)/f.View.Height()
	toDots := func(v dynamo.Vec) dynamo.Vec {
		return dynamo.V((v.X-f.View.Left)*sx, (v.Y-f.View.Top)*sy)
	}

	tl, br := toDots(dynamo.V(f.Area.Left, f.Area.Top)), toDots(dynamo.V(f.Area.Right, f.Area.Bottom))
	c.DrawRect(dynamo.Rect{Left: tl.X, Top: tl.Y, Right: br.X - 1, Bottom: br.Y - 1}, f.Theme.Muted)

	for _, r := range f.Ripples {
		at := toDots(r.At)
		c.DrawCircle(at.X, at.Y, 2+rippleAge(r, f.Now)*14, p.ring, f.Theme.Accent)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for id, m := range p.marks {
		shape, ok := f.Shapes[id]
		if !ok {
			delete(p.marks, id)
			continue
		}
		at := toDots(m.pos)
		r := shape.Radius * sx
		tint := shape.Tint
		if tint == "" {
			tint = f.Theme.Primary
		}
		c.DrawCircle(at.X, at.Y, r, p.ring, tint)
		// spoke shows the spin
		tip := p.ring.Angle(m.angle).Scale(r * 0.6).Add(at)
		c.DrawLine(round(at.X), round(at.Y), round(tip.X), round(tip.Y), tint)
	}
}

// rippleAge is how far through its life r is at now, in [0, 1].
func rippleAge(r interact.Ripple, now time.Time) float64 {
	life := r.Expires.Sub(r.Born)
	if life <= 0 {
		return 1
	}
	return min(max(float64(now.Sub(r.Born))/float64(life), 0), 1)
}
