package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/satsim/internal/dynamo"
	"github.com/san-kum/satsim/internal/forecast"
	"github.com/san-kum/satsim/internal/sim"
)

const (
	width       = 60
	height      = 22
	logCapacity = 14
	earthRadius = 50.0
	orbitDots   = 96
	maxListed   = 8
)

type TickMsg time.Time

type Options struct {
	Name    string
	Horizon int
	FPS     int
	// Events feeds collision events from the simulator's sink.
	Events <-chan dynamo.Event
	// Stop is called once when the user quits.
	Stop func()
	// OnForecast, when set, sees every forecast the user asks for.
	OnForecast func(*forecast.Report)
}

// Model renders the latest published snapshot. It never touches the live
// population.
type Model struct {
	sim        *sim.Simulator
	forecaster *forecast.Forecaster
	opts       Options
	canvas     *Canvas
	camera     *Camera
	snap       *sim.Snapshot
	log        []string
	total      int
	paused     bool
	showOrbits bool
	quitting   bool
}

func NewModel(s *sim.Simulator, f *forecast.Forecaster, opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	if opts.Horizon <= 0 {
		opts.Horizon = 100
	}
	if opts.Name == "" {
		opts.Name = "satsim"
	}
	return Model{
		sim:        s,
		forecaster: f,
		opts:       opts,
		canvas:     NewCanvas(width, height),
		camera:     NewCamera(),
		snap:       s.Snapshot(),
		log:        make([]string, 0, logCapacity),
		showOrbits: true,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if !m.quitting && m.opts.Stop != nil {
				m.opts.Stop()
			}
			m.quitting = true
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "p":
			m.predict()
		case "o":
			m.showOrbits = !m.showOrbits
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		}
	case TickMsg:
		m.drain()
		if !m.paused {
			m.snap = m.sim.Snapshot()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) drain() {
	if m.opts.Events == nil {
		return
	}
	for {
		select {
		case ev := <-m.opts.Events:
			m.total++
			m.appendLog(alertStyle.Render(fmt.Sprintf("! Collision detected between %s and %s", ev.A, ev.B)) +
				fmt.Sprintf(" (tick %d)", ev.Step))
		default:
			return
		}
	}
}

func (m *Model) predict() {
	if m.snap == nil {
		return
	}
	report := m.forecaster.Predict(m.snap.Bodies, m.opts.Horizon, forecast.ScanAll)
	if m.opts.OnForecast != nil {
		m.opts.OnForecast(report)
	}

	m.appendLog(predictStyle.Render(fmt.Sprintf("Prediction (%d steps ahead) from tick %d:", m.opts.Horizon, m.snap.Tick)))
	if !report.Collided() {
		m.appendLog("   " + report.Summary())
		return
	}
	const shown = 5
	for i, ev := range report.Events {
		if i == shown {
			m.appendLog(fmt.Sprintf("   ... and %d more", len(report.Events)-shown))
			break
		}
		m.appendLog(fmt.Sprintf("   Possible collision between %s and %s at step %d", ev.A, ev.B, ev.Step))
	}
}

func (m *Model) appendLog(line string) {
	m.log = append(m.log, line)
	if len(m.log) > logCapacity {
		m.log = m.log[len(m.log)-logCapacity:]
	}
}

func (m Model) draw() {
	c := m.canvas
	c.Clear()
	if m.snap == nil {
		return
	}

	w, h := c.Width*2, c.Height*4
	m.camera.Fit(m.snap.Bodies)

	orbital := false
	for _, b := range m.snap.Bodies {
		if b.Mode() != dynamo.Orbital {
			continue
		}
		orbital = true
		if !m.showOrbits {
			continue
		}
		for i := 0; i < orbitDots; i++ {
			a := 2 * math.Pi * float64(i) / orbitDots
			p := dynamo.Vec3{X: b.OrbitRadius * math.Cos(a), Z: b.OrbitRadius * math.Sin(a)}
			x, y, _ := m.camera.Project(p, w, h)
			c.Set(x, y)
		}
	}
	if orbital {
		x, y, scale := m.camera.Project(dynamo.Vec3{}, w, h)
		c.Disc(x, y, earthRadius*scale)
	}

	for _, b := range m.snap.Bodies {
		x, y, scale := m.camera.Project(b.Position(), w, h)
		c.Disc(x, y, b.Radius*scale)
	}
}

func (m Model) status() string {
	switch {
	case m.snap != nil && m.snap.Status == sim.Stopped:
		return StatusStopped.Render("STOPPED")
	case m.paused:
		return StatusPaused.Render("PAUSED")
	default:
		return StatusRunning.Render("RUNNING")
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	m.draw()

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.opts.Name)) + "\n")
	s.WriteString(m.status() + "\n\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	tick, n := 0, 0
	if m.snap != nil {
		tick, n = m.snap.Tick, len(m.snap.Bodies)
	}
	row("tick", fmt.Sprintf("%d", tick))
	row("bodies", fmt.Sprintf("%d", n))
	row("events", fmt.Sprintf("%d", m.total))
	s.WriteString("\n")

	if m.snap != nil {
		for i, b := range m.snap.Bodies {
			if i == maxListed {
				s.WriteString(fmt.Sprintf("... %d more\n", len(m.snap.Bodies)-maxListed))
				break
			}
			row(b.ID, b.Position().String())
		}
	}

	stats := statsStyle.Render(s.String())
	top := lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Render(m.canvas.String()), stats)

	help := helpStyle.Render("space: pause  p: predict  o: orbits  x/y: rotate  +/-: zoom  q: quit")
	return lipgloss.JoinVertical(lipgloss.Left, top, strings.Join(m.log, "\n"), help)
}
