package dynamo

import "math"

// Ring holds precomputed points on the unit circle.
// Rasterisers scale and offset it instead of calling sin/cos per pixel.
type Ring struct {
	pts []Vec
}

// DefaultRing has enough points to draw a smooth 60-unit circle on a
// Braille canvas.
var DefaultRing = NewRing(64)

func NewRing(n int) *Ring {
	if n < 3 {
		n = 3
	}
	r := &Ring{pts: make([]Vec, n)}
	for i := 0; i < n; i++ {
		a := float64(i) * 2 * math.Pi / float64(n)
		r.pts[i] = Vec{math.Cos(a), math.Sin(a)}
	}
	return r
}

func (r *Ring) Len() int { return len(r.pts) }

// Point returns the i-th point of a circle with the given centre and radius.
func (r *Ring) Point(i int, center Vec, radius float64) Vec {
	p := r.pts[i%len(r.pts)]
	return Vec{center.X + p.X*radius, center.Y + p.Y*radius}
}

// Points returns every point of a circle with the given centre and radius.
func (r *Ring) Points(center Vec, radius float64) []Vec {
	out := make([]Vec, len(r.pts))
	for i := range r.pts {
		out[i] = r.Point(i, center, radius)
	}
	return out
}

// Angle returns the point on the unit circle nearest to angle a.
func (r *Ring) Angle(a float64) Vec {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	i := int(math.Round(a*float64(len(r.pts))/(2*math.Pi))) % len(r.pts)
	return r.pts[i]
}
