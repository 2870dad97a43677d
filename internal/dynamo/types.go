package dynamo

import (
	"fmt"
	"math"
)

type Vec struct {
	X, Y float64
}

func V(x, y float64) Vec { return Vec{X: x, Y: y} }

func (v Vec) Add(o Vec) Vec       { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec       { return Vec{v.X - o.X, v.Y - o.Y} }
func (v Vec) Scale(f float64) Vec { return Vec{v.X * f, v.Y * f} }
func (v Vec) Dot(o Vec) float64   { return v.X*o.X + v.Y*o.Y }
func (v Vec) LenSq() float64      { return v.X*v.X + v.Y*v.Y }
func (v Vec) Len() float64        { return math.Sqrt(v.LenSq()) }
func (v Vec) Dist(o Vec) float64  { return v.Sub(o).Len() }
func (v Vec) String() string      { return fmt.Sprintf("(%.3f, %.3f)", v.X, v.Y) }
func (v Vec) Lerp(o Vec, t float64) Vec {
	return Vec{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t}
}

// Normalize returns the unit vector, or the zero vector for a zero input.
func (v Vec) Normalize() Vec {
	l := v.Len()
	if l == 0 {
		return Vec{}
	}
	return Vec{v.X / l, v.Y / l}
}

func (v Vec) IsValid() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// Rect is an axis-aligned rectangle in scene units.
type Rect struct {
	Left, Top, Right, Bottom float64
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }
func (r Rect) Center() Vec     { return Vec{(r.Left + r.Right) / 2, (r.Top + r.Bottom) / 2} }
func (r Rect) Empty() bool     { return r.Width() <= 0 || r.Height() <= 0 }

func (r Rect) Contains(p Vec) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// Inset shrinks the rectangle by d on every side. The result may be empty.
func (r Rect) Inset(d float64) Rect {
	return Rect{r.Left + d, r.Top + d, r.Right - d, r.Bottom - d}
}

// BodyState is a snapshot of one simulated body.
type BodyState struct {
	ID     string
	Pos    Vec
	Vel    Vec
	Angle  float64
	Radius float64
	Mass   float64
	Static bool
}

func (b BodyState) Speed() float64 { return b.Vel.Len() }

func (b BodyState) IsValid() bool {
	return b.Pos.IsValid() && b.Vel.IsValid() && !math.IsNaN(b.Angle) && !math.IsInf(b.Angle, 0)
}

// Visual receives the transform of one mounted body. Implementations must
// not call back into the simulation.
type Visual interface {
	SetTransform(pos Vec, angle float64)
}
