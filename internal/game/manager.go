package game

import (
	"fmt"
	"image/color"
	"log/slog"

	"chosenoffset.com/timecube/internal/render"
	"chosenoffset.com/timecube/internal/scenario"
	"chosenoffset.com/timecube/internal/simulation"
	"chosenoffset.com/timecube/internal/timetravel"
)

// State is the top-level screen being shown.
type State int

const (
	StateTitle State = iota
	StatePlaying
)

// LevelChoice is one entry of the title menu. An empty Path is the built-in
// sandbox.
type LevelChoice struct {
	Name        string
	Description string
	Path        string
}

// Manager handles the overall game state, including the title menu and
// gameplay.
type Manager struct {
	ScreenWidth  int
	ScreenHeight int
	State        State
	Game         *Game
	Renderer     render.Renderer
	InputMgr     render.InputManager
	Config       *simulation.Config
	Logger       *slog.Logger
	Metrics      *timetravel.Metrics

	Levels   []LevelChoice
	Selected int
}

// NewManager creates a game manager offering the sandbox and every valid
// scenario found in scenarioDir.
func NewManager(cfg *simulation.Config, r render.Renderer, input render.InputManager,
	logger *slog.Logger, metrics *timetravel.Metrics, scenarioDir string) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		ScreenWidth:  cfg.Window.Width,
		ScreenHeight: cfg.Window.Height,
		State:        StateTitle,
		Renderer:     r,
		InputMgr:     input,
		Config:       cfg,
		Logger:       logger,
		Metrics:      metrics,
		Levels: []LevelChoice{{
			Name:        "sandbox",
			Description: "Two cubes, two crates and a few ledges",
		}},
	}

	if scenarioDir == "" {
		return m
	}
	entries, err := scenario.ScanDirectory(scenarioDir)
	if err != nil {
		logger.Warn("no scenario levels", "dir", scenarioDir, "error", err)
		return m
	}
	for _, e := range entries {
		if e.Err != nil {
			logger.Warn("skipping scenario", "path", e.Path, "error", e.Err)
			continue
		}
		m.Levels = append(m.Levels, LevelChoice{Name: e.Name, Description: e.Description, Path: e.Path})
	}
	return m
}

// Update updates the game state.
func (m *Manager) Update() error {
	switch m.State {
	case StateTitle:
		switch {
		case m.InputMgr.IsKeyJustPressed(render.KeyEscape):
			return render.ErrQuit
		case m.InputMgr.IsKeyJustPressed(render.KeyUp) || m.InputMgr.IsKeyJustPressed(render.KeyW):
			m.Selected = (m.Selected + len(m.Levels) - 1) % len(m.Levels)
		case m.InputMgr.IsKeyJustPressed(render.KeyDown) || m.InputMgr.IsKeyJustPressed(render.KeyS):
			m.Selected = (m.Selected + 1) % len(m.Levels)
		case m.InputMgr.IsKeyJustPressed(render.KeyEnter) || m.InputMgr.IsKeyJustPressed(render.KeySpace):
			if err := m.LoadLevel(m.Levels[m.Selected]); err != nil {
				m.Logger.Error("failed to load level", "level", m.Levels[m.Selected].Name, "error", err)
				return nil
			}
			m.State = StatePlaying
		}
	case StatePlaying:
		if m.Game != nil {
			if m.InputMgr.IsKeyJustPressed(render.KeyEscape) {
				m.State = StateTitle
				m.Game = nil
				return nil
			}
			return m.Game.Update()
		}
	}
	return nil
}

// Draw draws the current state.
func (m *Manager) Draw(screen render.Image) {
	switch m.State {
	case StateTitle:
		m.drawTitle(screen)
	case StatePlaying:
		if m.Game != nil {
			m.Game.Draw(screen)
		}
	}
}

func (m *Manager) drawTitle(screen render.Image) {
	white := color.NRGBA{255, 255, 255, 255}
	screen.Fill(colorSky)
	m.Renderer.DrawText(screen, "TIME CUBE", 50, 40, white, 2.0)
	m.Renderer.DrawText(screen, "Up/Down choose a level, Enter to play, Esc to quit", 50, 70, white, 1.0)

	y := 110
	for i, lvl := range m.Levels {
		marker := "  "
		if i == m.Selected {
			marker = "> "
		}
		m.Renderer.DrawText(screen, marker+lvl.Name, 50, y, white, 1.0)
		y += 20
	}
	if d := m.Levels[m.Selected].Description; d != "" {
		m.Renderer.DrawText(screen, d, 50, y+20, white, 1.0)
	}
}

// Layout handles window resize.
func (m *Manager) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != m.ScreenWidth || outsideHeight != m.ScreenHeight {
		m.ScreenWidth = outsideWidth
		m.ScreenHeight = outsideHeight
		if m.Game != nil {
			m.Game.ScreenWidth = outsideWidth
			m.Game.ScreenHeight = outsideHeight
			m.Game.UpdateCamera()
		}
	}
	return outsideWidth, outsideHeight
}

// LoadLevel builds a fresh game for choice. Scenario levels take their
// capacity and scrub rate from the scenario when it sets them.
func (m *Manager) LoadLevel(choice LevelChoice) error {
	cfg := *m.Config
	lvl := DefaultLevel(cfg.TimeTravel.BatteryLife)

	if choice.Path != "" {
		s, err := scenario.Load(choice.Path)
		if err != nil {
			return err
		}
		if s.Capacity > 0 {
			cfg.TimeTravel.HistoryCapacity = s.Capacity
		}
		if s.ScrubRate > 0 {
			cfg.TimeTravel.ScrubRate = s.ScrubRate
		}
		lvl = LevelFromScenario(s)
	}

	cfg.Window.Width, cfg.Window.Height = m.ScreenWidth, m.ScreenHeight
	g, err := NewGame(&cfg, lvl, m.Renderer, m.InputMgr, m.Logger, m.Metrics)
	if err != nil {
		return fmt.Errorf("failed to start level %s: %w", choice.Name, err)
	}
	m.Game = g
	m.Logger.Info("level started", "level", choice.Name)
	return nil
}
