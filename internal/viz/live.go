package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/seaglass/internal/config"
	"github.com/san-kum/seaglass/internal/dynamo"
	"github.com/san-kum/seaglass/internal/interact"
	"github.com/san-kum/seaglass/internal/metrics"
	"github.com/san-kum/seaglass/internal/notes"
	"github.com/san-kum/seaglass/internal/scene"
)

const (
	panelWidth      = 38
	historyCapacity = 300
	tiltStep        = 5.0

	// UnitsPerDot is how many scene units one Braille dot covers.
	UnitsPerDot = 4.0
)

// Poster queues work onto the frame loop.
type Poster interface {
	Post(fn func()) error
}

type frameMsg time.Time

type loadedMsg struct{ err error }

// Live is the Bubble Tea model of the interactive scene. It reads the scene
// directly and sends every mutation through the frame loop.
type Live struct {
	sc     *scene.Scene
	loop   Poster
	proj   *CanvasProjector
	canvas *Canvas
	theme  Theme
	frame  time.Duration

	width, height int
	beta, gamma   float64
	speeds        []float64
	last          metrics.Frame
	selected      int
	editing       bool
	editID        string
	draft         []rune
	category      int
	showHelp      bool
	status        string

	// failures of posted mutations, drained every frame
	errs chan error
}

func NewLive(sc *scene.Scene, loop Poster, proj *CanvasProjector, theme Theme) Live {
	return Live{
		sc:     sc,
		loop:   loop,
		proj:   proj,
		canvas: NewCanvas(80-panelWidth, 22),
		theme:  theme,
		frame:  sc.Config().Timing.FrameInterval(),
		beta:   config.DefaultNeutralBeta,
		speeds: make([]float64, 0, historyCapacity),
		errs:   make(chan error, 8),
	}
}

func (m Live) Init() tea.Cmd { return m.tick() }

func (m Live) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.tap(msg.X, msg.Y)
		}
	case tea.KeyMsg:
		if m.editing {
			return m.editKey(msg)
		}
		return m.key(msg)
	case loadedMsg:
		m.status = "reloaded"
		if msg.err != nil {
			m.status = msg.err.Error()
		}
	case frameMsg:
		m.drain()
		m.sample()
		return m, m.tick()
	}
	return m, nil
}

// canvasSize returns the canvas dimensions in cells for a terminal size.
func canvasSize(width, height int) (cols, rows int) {
	return max(width-panelWidth-2, 10), max(height-1, 5)
}

func (m *Live) resize(width, height int) {
	m.width, m.height = width, height
	cols, rows := canvasSize(width, height)
	m.canvas = NewCanvas(cols, rows)
	w, h := float64(cols*2)*UnitsPerDot, float64(rows*4)*UnitsPerDot
	sc := m.sc
	m.post(func() error {
		_, err := sc.Resize(w, h)
		return err
	})
}

// tap maps a terminal cell to scene units. Clicks outside the canvas land
// on the panel, which counts as a control surface.
func (m *Live) tap(x, y int) {
	origin := interact.OriginScene
	col := x - 1
	if col < 0 || col >= m.canvas.Width || y >= m.canvas.Height {
		origin = interact.OriginButton
	}
	if m.editing {
		origin = interact.OriginTextArea
	}
	p := dynamo.V(float64(col*2+1)*UnitsPerDot, float64(y*4+2)*UnitsPerDot)
	sc := m.sc
	m.post(func() error {
		_, err := sc.Tap(p, origin)
		return err
	})
}

func (m *Live) tilt(dBeta, dGamma float64) {
	m.beta += dBeta
	m.gamma += dGamma
	beta, gamma := m.beta, m.gamma
	sc := m.sc
	m.post(func() error { return sc.Orient(beta, gamma) })
}

// post queues fn on the frame loop. Its error reaches the status line on
// the next frame.
func (m *Live) post(fn func() error) {
	errs := m.errs
	err := m.loop.Post(func() {
		if err := fn(); err != nil {
			select {
			case errs <- err:
			default:
			}
		}
	})
	if err != nil {
		m.status = "scene stopped"
	}
}

func (m *Live) drain() {
	for {
		select {
		case err := <-m.errs:
			m.status = err.Error()
		default:
			return
		}
	}
}

func (m *Live) sample() {
	m.last = metrics.Measure(m.sc.States())
	m.speeds = append(m.speeds, m.last.MeanSpeed)
	if len(m.speeds) > historyCapacity {
		m.speeds = m.speeds[1:]
	}
}

func (m Live) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "m":
		on := !m.sc.Motion()
		sc := m.sc
		m.post(func() error { return sc.SetMotion(on) })
		m.status = "motion off"
		if on {
			m.status = "motion on"
		}
	case "up":
		m.tilt(-tiltStep, 0)
	case "down":
		m.tilt(tiltStep, 0)
	case "left":
		m.tilt(0, -tiltStep)
	case "right":
		m.tilt(0, tiltStep)
	case "0":
		m.tilt(config.DefaultNeutralBeta-m.beta, -m.gamma)
	case "a", "n":
		m.editing = true
		m.editID = ""
		m.draft = m.draft[:0]
	case "e":
		list := m.sc.Notes()
		if len(list) > 0 {
			n := list[min(m.selected, len(list)-1)]
			m.editing = true
			m.editID = n.ID
			m.draft = append(m.draft[:0], []rune(n.Text)...)
		}
	case "j":
		m.selected++
	case "k":
		m.selected = max(m.selected-1, 0)
	case "d", "x":
		list := m.sc.Notes()
		if len(list) > 0 {
			id := list[min(m.selected, len(list)-1)].ID
			sc := m.sc
			m.post(func() error { return sc.DeleteNote(id) })
		}
	case "r":
		sc := m.sc
		return m, func() tea.Msg { return loadedMsg{err: sc.Load(context.Background())} }
	case "t":
		m.theme = NextTheme(m.theme)
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m Live) editKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.editing, m.editID = false, ""
	case tea.KeyEnter:
		text := strings.TrimSpace(string(m.draft))
		category := notes.Categories[m.category].Name
		id := m.editID
		m.editing, m.editID = false, ""
		if text == "" {
			break
		}
		sc := m.sc
		if id != "" {
			m.post(func() error { return sc.UpdateNote(id, text) })
		} else {
			m.post(func() error {
				_, err := sc.AddNote(text, category)
				return err
			})
		}
	case tea.KeyTab:
		if m.editID == "" {
			m.category = (m.category + 1) % len(notes.Categories)
		}
	case tea.KeyBackspace:
		if len(m.draft) > 0 {
			m.draft = m.draft[:len(m.draft)-1]
		}
	case tea.KeySpace:
		m.draft = append(m.draft, ' ')
	case tea.KeyRunes:
		m.draft = append(m.draft, msg.Runes...)
	case tea.KeyCtrlC:
		return m, tea.Quit
	}
	return m, nil
}

func (m Live) View() string {
	list := m.sc.Notes()
	shapes := make(map[string]Shape, len(list))
	tints := make(map[string]lipgloss.Color, len(list))
	for _, n := range list {
		tints[n.ID] = TermColor(n.Color)
	}
	for _, st := range m.sc.States() {
		shapes[st.ID] = Shape{Radius: st.Radius, Tint: tints[st.ID]}
	}
	w, h := m.canvas.Dots()
	m.proj.Paint(m.canvas, Frame{
		View:    dynamo.Rect{Right: float64(w) * UnitsPerDot, Bottom: float64(h) * UnitsPerDot},
		Area:    m.sc.Area(),
		Shapes:  shapes,
		Ripples: m.sc.Ripples(),
		Now:     time.Now(),
		Theme:   m.theme,
	})

	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Render(m.canvas.Render()), panelStyle.Render(m.panel(list)))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

func (m Live) panel(list []notes.Note) string {
	var s strings.Builder
	s.WriteString(headerStyle.Foreground(m.theme.Primary).Render("SEAGLASS") + "\n")

	target, current := m.sc.Gravity()
	motion := "off"
	if m.sc.Motion() {
		motion = "on"
	}
	cfg := m.sc.Config()
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Shards", fmt.Sprintf("%d", m.last.Bodies))
	row("Speed", fmt.Sprintf("%.2f avg  %.2f max", m.last.MeanSpeed, m.last.MaxSpeed))
	row("Kinetic", fmt.Sprintf("%.3f", m.last.Kinetic))
	row("Governor", cfg.Field.Governor)
	row("Motion", fmt.Sprintf("%s  tilt %.0f°/%.0f°", motion, m.beta, m.gamma))
	row("Gravity", fmt.Sprintf("%s → %s", current, target))
	if m.status != "" {
		row("Status", lipgloss.NewStyle().Foreground(m.theme.Warning).Render(m.status))
	}

	if len(m.speeds) > 1 {
		chart := asciigraph.Plot(m.speeds, asciigraph.Height(4), asciigraph.Width(panelWidth-12), asciigraph.Caption("mean speed"))
		s.WriteString("\n" + graphStyle.Render(chart) + "\n")
	}

	s.WriteString("\n" + Separator(panelWidth-4) + "\n")
	sel := min(m.selected, len(list)-1)
	for i, n := range list {
		line := Swatch(n.Color, Truncate(n.Text, panelWidth-8))
		if i == sel {
			s.WriteString(selectedStyle.Render("> ") + line + "\n")
		} else {
			s.WriteString("  " + line + "\n")
		}
	}
	if len(list) == 0 {
		s.WriteString(helpStyle.Render("  no notes yet") + "\n")
	}

	if m.editing {
		c := notes.Categories[m.category]
		head := Swatch(c.Color, c.Name)
		if m.editID != "" {
			head = labelStyle.Render("edit")
		}
		box := head + "\n" + string(m.draft) + "▏"
		s.WriteString("\n" + inputStyle.Render(box) + "\n")
	}
	s.WriteString("\n" + helpStyle.Render("a:add e:edit d:del j/k:select m:motion\n←↑↓→:tilt 0:level t:theme ?:help q:quit"))
	return s.String()
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  click    - Ripple and push shards   ║
║  a / n    - Write a note (tab: kind) ║
║  e        - Edit selected note       ║
║  d / x    - Delete selected note     ║
║  j / k    - Select note              ║
║  m        - Toggle motion gravity    ║
║  arrows   - Tilt                     ║
║  0        - Level the tilt           ║
║  r        - Reload notes             ║
║  t        - Cycle themes             ║
║  q        - Quit                     ║
╚══════════════════════════════════════╝`
