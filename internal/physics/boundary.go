package physics

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/san-kum/seaglass/internal/config"
	"github.com/san-kum/seaglass/internal/dynamo"
)

type wall struct {
	body   *cp.Body
	shape  *cp.Shape
	extent dynamo.Rect
}

// Boundary keeps exactly one set of four static walls around the play area.
type Boundary struct {
	world *World
	cfg   config.BoundaryConfig
	walls []wall
	area  dynamo.Rect
}

func NewBoundary(w *World, cfg config.BoundaryConfig) *Boundary {
	return &Boundary{world: w, cfg: cfg}
}

// Tune changes the margins used by the next Rebuild.
func (b *Boundary) Tune(cfg config.BoundaryConfig) { b.cfg = cfg }

// PlayArea is the viewport inset by the configured margin fractions.
func (b *Boundary) PlayArea(width, height float64) dynamo.Rect {
	mx, my := width*b.cfg.MarginX, height*b.cfg.MarginY
	return dynamo.Rect{Left: mx, Top: my, Right: width - mx, Bottom: height - my}
}

// Rebuild replaces the walls for a width x height viewport. A degenerate
// viewport leaves the current walls in place. Bodies are never moved.
func (b *Boundary) Rebuild(width, height float64) (dynamo.Rect, error) {
	area := b.PlayArea(width, height)
	if area.Empty() {
		return b.area, fmt.Errorf("viewport %gx%g: %w", width, height, dynamo.ErrInvalidState)
	}

	t := b.cfg.WallWidth
	extents := [4]dynamo.Rect{
		{Left: area.Left - t, Top: area.Top - t, Right: area.Right + t, Bottom: area.Top},
		{Left: area.Left - t, Top: area.Bottom, Right: area.Right + t, Bottom: area.Bottom + t},
		{Left: area.Left - t, Top: area.Top, Right: area.Left, Bottom: area.Bottom},
		{Left: area.Right, Top: area.Top, Right: area.Right + t, Bottom: area.Bottom},
	}

	b.Remove()
	b.walls = make([]wall, 0, len(extents))
	for _, ext := range extents {
		b.walls = append(b.walls, b.install(ext))
	}
	b.area = area
	return area, nil
}

func (b *Boundary) install(ext dynamo.Rect) wall {
	body := cp.NewStaticBody()
	body.SetPosition(cpv(ext.Center()))
	shape := cp.NewBox(body, ext.Width(), ext.Height(), 0)
	shape.SetElasticity(1)
	shape.SetFriction(shardFriction)
	b.world.space.AddBody(body)
	b.world.space.AddShape(shape)
	return wall{body: body, shape: shape, extent: ext}
}

// Remove uninstalls the walls. It is a no-op when none are installed.
func (b *Boundary) Remove() {
	for _, w := range b.walls {
		b.world.space.RemoveShape(w.shape)
		b.world.space.RemoveBody(w.body)
	}
	b.walls = nil
}

// Area is the play area of the last successful Rebuild.
func (b *Boundary) Area() dynamo.Rect { return b.area }

// Walls returns the installed wall extents: top, bottom, left, right.
func (b *Boundary) Walls() []dynamo.Rect {
	out := make([]dynamo.Rect, len(b.walls))
	for i, w := range b.walls {
		out[i] = w.extent
	}
	return out
}
