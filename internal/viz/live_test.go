package viz

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/trampball/internal/worldfile"
)

const liveWorld = `
STAGE 300 0 0 300
BALL 150 200
  RADIUS 20
TRAMPOLINE 9 0 50 300
`

func newLiveModel(t *testing.T) Model {
	t.Helper()
	scene, err := worldfile.Parse(strings.NewReader(liveWorld))
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewModel(scene, 10, 1, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestNewModelRejectsInterval(t *testing.T) {
	scene, _ := worldfile.Parse(strings.NewReader(liveWorld))
	if _, err := NewModel(scene, 0, 1, nil); err == nil {
		t.Error("expected error for zero interval")
	}
}

func TestLiveTickAdvancesWorld(t *testing.T) {
	m := newLiveModel(t)
	m, cmd := update(t, m, TickMsg{})
	if cmd == nil {
		t.Error("tick did not schedule the next one")
	}
	if ticks, _ := m.world().Elapsed(); ticks != 1 {
		t.Errorf("ticks = %d, want 1", ticks)
	}
	if len(m.energy) != 1 {
		t.Errorf("energy history = %d, want 1", len(m.energy))
	}
}

func TestLivePauseAndStep(t *testing.T) {
	m := newLiveModel(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if !m.runner.Paused() {
		t.Fatal("space did not pause")
	}
	m, _ = update(t, m, TickMsg{})
	if ticks, _ := m.world().Elapsed(); ticks != 0 {
		t.Errorf("paused world ticked %d times", ticks)
	}
	m, _ = update(t, m, runes("n"))
	if ticks, _ := m.world().Elapsed(); ticks != 1 {
		t.Errorf("single step ticks = %d, want 1", ticks)
	}
}

func TestLiveSlomo(t *testing.T) {
	m := newLiveModel(t)
	m, _ = update(t, m, runes("+"))
	if m.runner.Slomo() != 2 {
		t.Fatalf("slomo = %d, want 2", m.runner.Slomo())
	}
	for range 4 {
		m, _ = update(t, m, TickMsg{})
	}
	if ticks, _ := m.world().Elapsed(); ticks != 2 {
		t.Errorf("ticks = %d, want 2 at slomo 2", ticks)
	}
	m, _ = update(t, m, runes("-"))
	m, _ = update(t, m, runes("-"))
	if m.runner.Slomo() != 1 {
		t.Errorf("slomo = %d, want 1", m.runner.Slomo())
	}
}

func TestLiveGravityKeys(t *testing.T) {
	m := newLiveModel(t)
	g0 := m.world().Gravity()

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if g := m.world().Gravity(); g.X >= 0 {
		t.Errorf("left tilt gave gravity %v, want negative x", g)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if g := m.world().Gravity(); g.X <= 0 {
		t.Errorf("right tilt gave gravity %v, want positive x", g)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if got, want := m.world().Gravity().Len(), g0.Len()*gravityScale; got < want-1e-9 || got > want+1e-9 {
		t.Errorf("|g| = %v, want %v", got, want)
	}
}

func TestLiveReset(t *testing.T) {
	m := newLiveModel(t)
	for range 5 {
		m, _ = update(t, m, TickMsg{})
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = update(t, m, runes("r"))

	if ticks, _ := m.world().Elapsed(); ticks != 0 {
		t.Errorf("ticks after reset = %d", ticks)
	}
	if g := m.world().Gravity(); g.X != 0 {
		t.Errorf("gravity not restored: %v", g)
	}
	if len(m.energy) != 0 {
		t.Errorf("energy history not cleared")
	}
}

func TestLiveQuit(t *testing.T) {
	m := newLiveModel(t)
	_, cmd := update(t, m, runes("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestLiveView(t *testing.T) {
	m := newLiveModel(t)
	m, _ = update(t, m, TickMsg{})
	m, _ = update(t, m, TickMsg{})
	out := m.View()
	for _, want := range []string{"TRAMPBALL", "RUNNING", "Gravity"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m, _ = update(t, m, runes("t"))
	if m.theme.Name == Themes[0].Name {
		t.Error("t did not change theme")
	}
	m, _ = update(t, m, runes("?"))
	if !strings.Contains(m.View(), "single step") {
		t.Error("help overlay not shown")
	}
}
