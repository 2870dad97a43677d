// Package export renders scene snapshots as SVG.
package export

import (
	"fmt"
	"html"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/seaglass/internal/dynamo"
	"github.com/san-kum/seaglass/internal/interact"
	"github.com/san-kum/seaglass/internal/viz"
)

// Shard is a body as the snapshot draws it.
type Shard struct {
	Radius float64
	Color  string
	Label  string
}

type placed struct {
	pos   dynamo.Vec
	angle float64
}

// SVGProjector collects the transforms the render synchronizer writes and
// turns them into one SVG frame. Scene units map 1:1 to SVG user units.
type SVGProjector struct {
	marks map[string]placed
}

func NewSVGProjector() *SVGProjector {
	return &SVGProjector{marks: make(map[string]placed)}
}

func (p *SVGProjector) Project(id string, pos dynamo.Vec, angle float64) {
	p.marks[id] = placed{pos: pos, angle: angle}
}

// Snapshot is what a frame shows besides the projected transforms.
type Snapshot struct {
	Width, Height float64
	Area          dynamo.Rect
	Walls         []dynamo.Rect
	Shards        map[string]Shard
	Ripples       []interact.Ripple
}

// WriteSVG draws the viewport, walls, ripples and every projected shard
// that has an entry in snap.Shards, in id order.
func (p *SVGProjector) WriteSVG(w io.Writer, snap Snapshot) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0b1d2a"/>
`, snap.Width, snap.Height, snap.Width, snap.Height)

	sb.WriteString(`<g fill="#16324a">` + "\n")
	for _, r := range snap.Walls {
		fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>`+"\n", r.Left, r.Top, r.Width(), r.Height())
	}
	sb.WriteString("</g>\n")
	a := snap.Area
	fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="#4488aa" stroke-dasharray="4 4"/>`+"\n", a.Left, a.Top, a.Width(), a.Height())

	for _, r := range snap.Ripples {
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="20" fill="none" stroke="rgba(255, 255, 255, 0.5)" stroke-width="2"/>`+"\n", r.At.X, r.At.Y)
	}

	ids := make([]string, 0, len(p.marks))
	for id := range p.marks {
		if _, ok := snap.Shards[id]; ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		m, s := p.marks[id], snap.Shards[id]
		color := s.Color
		if color == "" {
			color = "rgba(173, 216, 230, 0.4)"
		}
		fmt.Fprintf(&sb, `<g transform="translate(%.1f %.1f) rotate(%.2f)">`+"\n", m.pos.X, m.pos.Y, m.angle*180/math.Pi)
		fmt.Fprintf(&sb, `<circle r="%.1f" fill="%s" stroke="rgba(255, 255, 255, 0.6)"/>`+"\n", s.Radius, html.EscapeString(color))
		if s.Label != "" {
			fmt.Fprintf(&sb, `<text font-size="10" fill="#ffffff" text-anchor="middle" dy="3">%s</text>`+"\n", html.EscapeString(s.Label))
		}
		sb.WriteString("</g>\n")
	}
	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// CanvasToSVG converts a Braille canvas to SVG, one dot per lit sub-pixel,
// keeping each cell's tint.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	// Braille dot-to-bit mapping
	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}
	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r <= 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)
			fill := string(canvas.Tint[row][col])
			if fill == "" {
				fill = "#a5d8e6"
			}
			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`+"\n", cx, cy, dotRadius, fill)
					}
				}
			}
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}
