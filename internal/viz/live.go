package viz

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/trampball/internal/dynamo"
	"github.com/san-kum/trampball/internal/metrics"
	"github.com/san-kum/trampball/internal/sim"
	"github.com/san-kum/trampball/internal/worldfile"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 300
	tiltStep        = math.Pi / 36
	gravityScale    = 1.1
	maxSlomo        = 64
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).Padding(1, 2).Width(45)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model is the Bubble Tea model of the live view. Every tick runs on the
// update loop (single-threaded execution), so the view always sees a
// world between ticks.
type Model struct {
	scene    *worldfile.Scene
	runner   *sim.Runner
	log      *slog.Logger
	interval time.Duration
	dtMs     float64

	canvas   *Canvas
	theme    Theme
	frame    int
	stats    sim.TickStats
	energy   []float64
	subSteps []float64
	err      error
	showHelp bool
}

// NewModel builds a world from scene and wraps it in a Runner ticking
// every intervalMs of simulated time.
func NewModel(scene *worldfile.Scene, intervalMs float64, slomo int, log *slog.Logger) (Model, error) {
	if intervalMs <= 0 {
		return Model{}, fmt.Errorf("interval must be positive, got %v: %w", intervalMs, dynamo.ErrParameterBounds)
	}
	if log == nil {
		log = slog.Default()
	}
	m := Model{
		scene:    scene,
		log:      log,
		dtMs:     intervalMs,
		interval: time.Duration(intervalMs * float64(time.Millisecond)),
		canvas:   NewCanvas(width, height),
		theme:    Themes[0],
		energy:   make([]float64, 0, historyCapacity),
		subSteps: make([]float64, 0, historyCapacity),
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	m.runner.SetSlomo(slomo)
	return m, nil
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

// Runner exposes the runner driving the current world.
func (m Model) Runner() *sim.Runner { return m.runner }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		if !m.runner.Paused() {
			m.frame++
			if m.frame >= m.runner.Slomo() {
				m.frame = 0
				m.step()
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ", "space":
		m.runner.TogglePause()
	case "n":
		if m.runner.Paused() {
			m.step()
		}
	case "r":
		slomo, paused := m.runner.Slomo(), m.runner.Paused()
		if err := m.reset(); err != nil {
			m.err = err
			break
		}
		m.runner.SetSlomo(slomo)
		m.runner.SetPaused(paused)
	case "left":
		m.tilt(tiltStep)
	case "right":
		m.tilt(-tiltStep)
	case "up":
		m.setGravity(m.world().Gravity().Scale(gravityScale))
	case "down":
		m.setGravity(m.world().Gravity().Scale(1 / gravityScale))
	case "+", "=":
		m.runner.SetSlomo(min(m.runner.Slomo()*2, maxSlomo))
	case "-", "_":
		m.runner.SetSlomo(m.runner.Slomo() / 2)
	case "t":
		m.theme = NextTheme(m.theme)
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) world() *sim.World { return m.runner.World() }

// tilt rotates gravity by theta. Left tilts it clockwise so balls roll left.
func (m *Model) tilt(theta float64) {
	m.setGravity(m.world().Gravity().Rotate(-theta))
}

func (m *Model) setGravity(g dynamo.Vec2) {
	if err := m.world().SetGravity(g); err != nil {
		m.err = err
	}
}

func (m *Model) step() {
	m.stats = m.runner.StepOnce(m.dtMs)
	m.energy = appendCapped(m.energy, metrics.TotalEnergy(m.world()))
	m.subSteps = appendCapped(m.subSteps, float64(m.stats.SubSteps))
	if !m.world().Valid() && m.err == nil {
		m.err = fmt.Errorf("non-finite state after tick %d", m.runner.Ticks())
		m.runner.SetPaused(true)
		m.log.Error("live view paused", "error", m.err)
	}
}

func (m *Model) reset() error {
	w, err := m.scene.Build()
	if err != nil {
		return err
	}
	m.runner = sim.NewRunner(w, m.log)
	m.energy = m.energy[:0]
	m.subSteps = m.subSteps[:0]
	m.stats = sim.TickStats{}
	m.frame = 0
	m.err = nil
	return nil
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

func (m Model) draw() {
	w := m.world()
	m.canvas.Clear()
	DrawWorld(m.canvas, NewViewport(w.Stage(), m.canvas), w.Walls(), w.Trampolines(), w.Balls())
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Foreground(m.theme.Canvas).Render(m.canvas.String())

	w := m.world()
	ticks, t := w.Elapsed()
	g := w.Gravity()

	var s strings.Builder
	header := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Header)
	s.WriteString(header.Render("TRAMPBALL") + "\n")

	switch {
	case m.err != nil:
		s.WriteString(StatusPaused.Render("ERROR: "+m.err.Error()) + "\n\n")
	case m.runner.Paused():
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	default:
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	}

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(lipgloss.NewStyle().Foreground(m.theme.Graph).Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", t))
	row("Ticks", fmt.Sprintf("%d", ticks))
	row("Gravity", fmt.Sprintf("%.0f @ %.0f°", g.Len(), math.Atan2(g.Y, g.X)*180/math.Pi))
	row("Balls", fmt.Sprintf("%d", len(w.Balls())))
	row("Attached", fmt.Sprintf("%d", m.stats.Attached))
	row("Peak speed", fmt.Sprintf("%.1f", m.stats.PeakSpeed))
	row("Slomo", fmt.Sprintf("1/%d", m.runner.Slomo()))
	s.WriteString(MetricLabel.Render("Sub-steps") + SparklineChart(m.subSteps, 28) + "\n")

	s.WriteString("\n" + Separator(36) + "\n")
	s.WriteString(helpStyle.Render("SP:Pause N:Step R:Reset Q:Quit\n←→:Tilt ↑↓:Gravity +-:Slomo\nT:Theme ?:Help"))

	statsView := statsStyle.BorderForeground(m.theme.Border).Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return KeyHint.Render(`
  Space      pause / resume
  N          single step while paused
  R          rebuild the world
  Left/Right tilt gravity by 5°
  Up/Down    scale gravity by 10%
  + / -      slow motion divider
  T          cycle themes (`+strings.Join(ThemeNames(), ", ")+`)
  ?          toggle this help
  Q          quit
`) + "\n" + mainView
	}
	return mainView
}

// Run starts the live view on the alternate screen and blocks until the
// user quits.
func Run(scene *worldfile.Scene, intervalMs float64, slomo int, log *slog.Logger) error {
	m, err := NewModel(scene, intervalMs, slomo, log)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
