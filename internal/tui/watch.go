package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/metrics"
	"github.com/san-kum/rigidsim/internal/sim"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// BuildFunc creates a fresh world for a named scene.
type BuildFunc func(scene string) (*sim.World, error)

// PresetBuilder builds the named preset scene with opts applied on top.
func PresetBuilder(opts ...sim.Option) BuildFunc {
	return func(scene string) (*sim.World, error) {
		cfg := config.GetPreset(scene)
		if cfg == nil {
			return nil, fmt.Errorf("unknown scene %q", scene)
		}
		return config.Build(cfg, opts...)
	}
}

type state int

const (
	stateMenu state = iota
	stateSim
)

const maxSpeed = 16

type model struct {
	state    state
	cursor   int
	scenes   []string
	selected string
	build    BuildFunc

	world   *sim.World
	running bool
	paused  bool
	speed   int
	history []float64
	err     error

	scale     float64
	center    mgl64.Vec3
	lastFrame time.Time
	fps       float64

	width  int
	height int
}

func NewWatchApp(scenes []string, build BuildFunc) *model {
	return &model{
		state:   stateMenu,
		scenes:  scenes,
		build:   build,
		speed:   1,
		history: make([]float64, 0, 120),
		width:   80,
		height:  24,
	}
}

func (m model) Init() tea.Cmd {
	if m.state == stateSim {
		return tick()
	}
	return nil
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.fit()
		return m, nil
	case tickMsg:
		if m.state != stateSim || !m.running {
			return m, nil
		}
		if !m.paused && m.world != nil {
			now := time.Now()
			if !m.lastFrame.IsZero() {
				if dt := now.Sub(m.lastFrame).Seconds(); dt > 0 {
					m.fps = 1.0 / dt
				}
			}
			m.lastFrame = now
			for i := 0; i < m.speed && m.err == nil; i++ {
				m.step()
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.state == stateSim {
		return m.simKey(msg)
	}
	return m.menuKey(msg)
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.scenes)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.scenes) == 0 {
			return m, nil
		}
		m.selected = m.scenes[m.cursor]
		if err := m.start(); err != nil {
			m.err = err
			return m, nil
		}
		return m, tick()
	}
	return m, nil
}

func (m model) simKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.running = false
		m.state = stateMenu
		m.world = nil
		m.err = nil
		return m, tea.ClearScreen
	case " ", "p":
		m.paused = !m.paused
	case "n":
		if m.paused {
			m.step()
		}
	case "m":
		if m.world != nil {
			if m.world.Mode() == sim.ModeDevice {
				m.world.SetMode(sim.ModeReference)
			} else {
				m.world.SetMode(sim.ModeDevice)
			}
		}
	case "+", "=":
		m.speed = min(m.speed*2, maxSpeed)
	case "-", "_":
		m.speed = max(m.speed/2, 1)
	case "r":
		if err := m.start(); err != nil {
			m.err = err
		}
		return m, tea.ClearScreen
	}
	return m, nil
}

func (m *model) start() error {
	w, err := m.build(m.selected)
	if err != nil {
		return err
	}
	m.world = w
	m.state = stateSim
	m.running = true
	m.paused = false
	m.err = nil
	m.history = m.history[:0]
	m.lastFrame = time.Time{}
	m.fit()
	return nil
}

func (m *model) fit() {
	if m.world == nil {
		return
	}
	cw, ch := m.canvasSize()
	m.scale, m.center = fitScale(m.world.Bodies(), cw, ch)
}

func (m *model) step() {
	if m.world == nil {
		return
	}
	if err := m.world.Step(); err != nil {
		m.err = err
		m.paused = true
		return
	}
	m.history = append(m.history, metrics.TotalEnergy(m.world.Bodies(), m.world.Params().Gravity))
	if len(m.history) > 120 {
		m.history = m.history[1:]
	}
}

func (m model) canvasSize() (int, int) {
	return max(m.width-6, 50), max(m.height-10, 12)
}

func (m model) View() string {
	if m.state == stateSim {
		return m.viewSim()
	}
	return m.viewMenu()
}

func (m model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("          " + cyan.Render("r i g i d s i m") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, name := range m.scenes {
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(name) + "\n")
		} else {
			b.WriteString("        " + dim.Render(name) + "\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n      " + red.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter start   q quit") + "\n")

	return b.String()
}

func (m model) viewSim() string {
	if m.world == nil {
		return ""
	}
	cw, ch := m.canvasSize()
	c := newCanvas(cw, ch, m.scale, m.center)
	bodies := m.world.Bodies()
	for i := range bodies {
		c.drawBody(&bodies[i])
	}
	joints := m.world.Joints()
	for i := range joints {
		c.drawJoint(bodies, &joints[i])
	}
	for _, ct := range m.world.Contacts() {
		if ct.HasPoint {
			x, y := c.project(ct.Point)
			c.set(x, y, '*')
		}
	}

	var b strings.Builder

	statusIcon := green.Render("●")
	statusText := green.Render("running")
	if m.paused {
		statusIcon = yellow.Render("○")
		statusText = yellow.Render("paused")
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s  %s\n",
		statusIcon, cyan.Render(m.selected), statusText, magenta.Render(m.world.Mode().String())))
	b.WriteString(fmt.Sprintf("   %s  %s  %s  %s\n\n",
		dim.Render(fmt.Sprintf("t=%.2fs", m.world.Time())),
		dim.Render(fmt.Sprintf("step %d", m.world.Steps())),
		dim.Render(fmt.Sprintf("×%d", m.speed)),
		dim.Render(fmt.Sprintf("%.0ffps", m.fps))))

	b.WriteString(c.String())

	b.WriteString(fmt.Sprintf("\n   %s %s  %s %s  %s %s\n",
		dim.Render("bodies"), white.Render(fmt.Sprint(m.world.NumBodies())),
		dim.Render("joints"), white.Render(fmt.Sprint(m.world.NumJoints())),
		dim.Render("contacts"), white.Render(fmt.Sprint(len(m.world.Contacts())))))

	if len(m.history) > 1 {
		b.WriteString(fmt.Sprintf("   %s %s %s\n", dim.Render("E"),
			cyan.Render(sparkline(m.history, 40)),
			dim.Render(fmt.Sprintf("%.2f", m.history[len(m.history)-1]))))
	}
	if m.err != nil {
		b.WriteString("   " + red.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n" + dim.Render("   space pause  n step  m mode  ±speed  r reset  q back") + "\n")

	return b.String()
}

// RunWatch starts the viewer. A non-empty scene skips the menu.
func RunWatch(scenes []string, build BuildFunc, scene string) error {
	app := NewWatchApp(scenes, build)
	if scene != "" {
		app.selected = scene
		if err := app.start(); err != nil {
			return err
		}
	}
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
