package viz

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/seaglass/internal/dynamo"
	"github.com/san-kum/seaglass/internal/interact"
	"github.com/san-kum/seaglass/internal/scene"
)

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0, "")
	c.Set(3, 3, "#ff0000")
	if c.Grid[0][0] != 0x2801 {
		t.Errorf("cell 0 = %U, want U+2801", c.Grid[0][0])
	}
	if c.Grid[0][1] != 0x2880 || c.Tint[0][1] != "#ff0000" {
		t.Errorf("cell 1 = %U tint %q", c.Grid[0][1], c.Tint[0][1])
	}

	c.Unset(0, 0)
	c.Set(-1, 0, "")
	c.Set(100, 0, "")
	if c.Grid[0][0] != blank {
		t.Errorf("cell 0 after unset = %U", c.Grid[0][0])
	}
}

func TestDrawCircleStaysOnRing(t *testing.T) {
	c := NewCanvas(20, 10)
	c.DrawCircle(20, 20, 8, dynamo.DefaultRing, "")
	w, h := c.Dots()
	lit := 0
	for y := range h {
		for x := range w {
			if c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) == 0 {
				continue
			}
			lit++
			d := dynamo.V(float64(x), float64(y)).Dist(dynamo.V(20, 20))
			if d < 6 || d > 10 {
				t.Fatalf("dot (%d,%d) at distance %.2f from centre", x, y, d)
			}
		}
	}
	if lit < 30 {
		t.Errorf("only %d dots lit", lit)
	}
}

func TestTermColor(t *testing.T) {
	tests := []struct {
		in   string
		want lipgloss.Color
	}{
		{"rgba(255, 182, 193, 0.4)", "#ffb6c1"},
		{"rgb(0, 16, 255)", "#0010ff"},
		{"#123456", "#123456"},
	}
	for _, tt := range tests {
		if got := TermColor(tt.in); got != tt.want {
			t.Errorf("TermColor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("water the basil", 6); got != "water…" {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate = %q", got)
	}
}

func TestProjectorDropsRemovedMarks(t *testing.T) {
	p := NewCanvasProjector()
	p.Project("a", dynamo.V(40, 40), 0)
	p.Project("gone", dynamo.V(80, 40), 0)

	c := NewCanvas(40, 20)
	p.Paint(c, Frame{
		View:   dynamo.Rect{Right: 320, Bottom: 320},
		Area:   dynamo.Rect{Left: 10, Top: 10, Right: 300, Bottom: 300},
		Shapes: map[string]Shape{"a": {Radius: 20}},
		Theme:  ThemeTide,
	})
	if p.Len() != 1 {
		t.Errorf("marks = %d, want 1", p.Len())
	}
	if strings.Trim(c.String(), "⠀\n") == "" {
		t.Error("nothing painted")
	}
}

func TestRippleAge(t *testing.T) {
	t0 := time.Unix(100, 0)
	r := interact.Ripple{Born: t0, Expires: t0.Add(time.Second)}
	if got := rippleAge(r, t0.Add(250*time.Millisecond)); got != 0.25 {
		t.Errorf("age = %v, want 0.25", got)
	}
	if got := rippleAge(r, t0.Add(5*time.Second)); got != 1 {
		t.Errorf("age = %v, want 1", got)
	}
}

// inline runs posted work immediately.
type inline struct{ posted int }

func (i *inline) Post(fn func()) error {
	i.posted++
	fn()
	return nil
}

func newLive(t *testing.T) (Live, *scene.Scene, *inline) {
	t.Helper()
	proj := NewCanvasProjector()
	sc, err := scene.New(scene.Options{Projector: proj, Rand: rand.New(rand.NewSource(1))})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sc.Close() })
	loop := &inline{}
	return NewLive(sc, loop, proj, ThemeTide), sc, loop
}

func TestLiveResizeAndTap(t *testing.T) {
	m, sc, _ := newLive(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Live)

	cols, rows := canvasSize(120, 40)
	area := sc.Area()
	if want := float64(cols*2) * UnitsPerDot * (1 - 2*0.12); abs(area.Width()-want) > 1e-6 {
		t.Errorf("area width = %v, want %v", area.Width(), want)
	}
	if rows != m.canvas.Height {
		t.Errorf("canvas rows = %d, want %d", m.canvas.Height, rows)
	}

	m.Update(tea.MouseMsg{X: 10, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if len(sc.Ripples()) != 1 {
		t.Errorf("ripples after canvas click = %d, want 1", len(sc.Ripples()))
	}
	m.Update(tea.MouseMsg{X: 119, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if len(sc.Ripples()) != 1 {
		t.Errorf("panel click made a ripple")
	}
}

func TestLiveAddNote(t *testing.T) {
	m, sc, _ := newLive(t)
	press := func(msg tea.KeyMsg) {
		next, _ := m.Update(msg)
		m = next.(Live)
	}
	press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hi")})
	press(tea.KeyMsg{Type: tea.KeySpace})
	press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("sea")})
	press(tea.KeyMsg{Type: tea.KeyTab})
	press(tea.KeyMsg{Type: tea.KeyEnter})

	list := sc.Notes()
	if len(list) != 1 || list[0].Text != "hi sea" || list[0].Category != "memories" {
		t.Fatalf("notes = %+v", list)
	}
	if !strings.Contains(m.View(), "hi sea") {
		t.Error("view does not list the note")
	}

	press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	if len(sc.Notes()) != 0 {
		t.Error("delete key left the note")
	}
}

func TestLiveEditNote(t *testing.T) {
	m, sc, _ := newLive(t)
	press := func(msg tea.KeyMsg) {
		next, _ := m.Update(msg)
		m = next.(Live)
	}
	first, err := sc.AddNote("low tide", "mood")
	if err != nil {
		t.Fatal(err)
	}

	press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	if !m.editing || string(m.draft) != "low tide" {
		t.Fatalf("editor opened with %q", string(m.draft))
	}
	for range len("tide") {
		press(tea.KeyMsg{Type: tea.KeyBackspace})
	}
	press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("moon")})
	press(tea.KeyMsg{Type: tea.KeyTab})
	press(tea.KeyMsg{Type: tea.KeyEnter})

	list := sc.Notes()
	if len(list) != 1 || list[0].ID != first.ID || list[0].Text != "low moon" || list[0].Category != "mood" {
		t.Fatalf("notes after edit = %+v", list)
	}
	if m.editing || m.editID != "" {
		t.Error("editor still open")
	}

	press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	press(tea.KeyMsg{Type: tea.KeyEsc})
	if got := sc.Notes()[0].Text; got != "low moon" {
		t.Errorf("cancelled edit changed the note to %q", got)
	}
}

func TestLiveReportsFailedMutations(t *testing.T) {
	m, sc, _ := newLive(t)
	sc.Close()

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	m = next.(Live)
	next, _ = m.Update(frameMsg(time.Now()))
	m = next.(Live)
	if m.status != dynamo.ErrDisposed.Error() {
		t.Errorf("status = %q, want %q", m.status, dynamo.ErrDisposed.Error())
	}
}

func TestLiveMotionAndTilt(t *testing.T) {
	m, sc, _ := newLive(t)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	m = next.(Live)
	if !sc.Motion() {
		t.Fatal("motion not enabled")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	target, _ := sc.Gravity()
	if target.X <= 0 {
		t.Errorf("target after right tilt = %v", target)
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
