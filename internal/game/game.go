package game

import (
	"fmt"
	"log/slog"
	"math"

	"chosenoffset.com/timecube/internal/core/geom"
	"chosenoffset.com/timecube/internal/render"
	"chosenoffset.com/timecube/internal/render/lighting"
	"chosenoffset.com/timecube/internal/simulation"
	"chosenoffset.com/timecube/internal/timetravel"
)

// interactReach is how far in front of the player a cube can be used.
const interactReach = 1.2

// Cube glow, in world units. Ambient drops while time is stopped.
const (
	glowRadius       = 2.5
	glowRadiusRewind = 4.0
	glowIntensity    = 0.5
	frozenAmbient    = 0.6
)

// Game holds all game state and logic.
type Game struct {
	ScreenWidth  int
	ScreenHeight int
	Level        Level
	Player       *Player
	Crates       []*Body
	Cubes        []*CubeProp
	Camera       Camera
	World        *timetravel.World
	Renderer     render.Renderer
	InputMgr     render.InputManager
	Logger       *slog.Logger
	Lights       *lighting.Manager

	// UI state
	Messages   []Message
	ShowDebug  bool
	LastErrors int

	dt     float64
	inCube *CubeProp // cube the player is sitting in
	ghosts map[*timetravel.TimeCube]*Skeleton
	frozen bool
	mode   timetravel.ControlMode
	axis   float64
	pixel  render.Image
}

// NewGame builds lvl and the time travel world that records it. Every crate
// and cube body gets a history; every cube gets a ghost of the player.
func NewGame(cfg *simulation.Config, lvl Level, r render.Renderer, input render.InputManager,
	logger *slog.Logger, metrics *timetravel.Metrics) (*Game, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tt := cfg.TimeTravel

	g := &Game{
		ScreenWidth:  cfg.Window.Width,
		ScreenHeight: cfg.Window.Height,
		Level:        lvl,
		Player:       &Player{Skeleton: NewPlayerSkeleton(lvl.PlayerSpawn)},
		Renderer:     r,
		InputMgr:     input,
		Logger:       logger.With("level", lvl.Name),
		Lights:       lighting.NewManager(),
		dt:           1 / float64(tt.TickRate),
		ghosts:       make(map[*timetravel.TimeCube]*Skeleton),
	}

	manager, err := timetravel.NewManager(tt.HistoryCapacity, g)
	if err != nil {
		return nil, fmt.Errorf("failed to create time travel manager: %w", err)
	}
	manager.SetLogger(g.Logger)
	manager.SetMetrics(metrics)

	for i, pos := range lvl.Crates {
		body, err := newBody(fmt.Sprintf("crate%d", i), pos, crateSize, tt.HistoryCapacity)
		if err != nil {
			return nil, err
		}
		manager.AddHistory(body.History)
		g.Crates = append(g.Crates, body)
	}

	for _, spawn := range lvl.Cubes {
		cube, err := timetravel.NewTimeCube(spawn.Name, spawn.BatteryLife)
		if err != nil {
			return nil, fmt.Errorf("cube %s: %w", spawn.Name, err)
		}
		body, err := newBody(spawn.Name, spawn.Pos, cubeSize, tt.HistoryCapacity)
		if err != nil {
			return nil, err
		}
		if err := manager.AddCube(cube); err != nil {
			return nil, fmt.Errorf("cube %s: %w", spawn.Name, err)
		}
		manager.AddHistory(body.History)
		g.Cubes = append(g.Cubes, &CubeProp{Cube: cube, Body: body})
	}

	g.World, err = timetravel.NewWorld(manager, tt.ScrubRate)
	if err != nil {
		return nil, fmt.Errorf("failed to create world: %w", err)
	}

	g.Logger.Info("level loaded", "crates", len(g.Crates), "cubes", len(g.Cubes),
		"capacity", tt.HistoryCapacity)
	g.UpdateCamera()
	return g, nil
}

func newBody(name string, pos geom.Vec3, size float64, capacity int) (*Body, error) {
	part := NewPart(name, PartBox, pos, size, size)
	history, err := timetravel.NewHistory([]timetravel.Bone{part}, capacity)
	if err != nil {
		return nil, fmt.Errorf("history for %s: %w", name, err)
	}
	return &Body{Part: part, History: history}, nil
}

// Update handles one tick: input, physics, then the world clock.
func (g *Game) Update() error {
	g.updateMessages(g.dt)

	if g.InputMgr.IsKeyJustPressed(render.KeyTab) {
		g.ShowDebug = !g.ShowDebug
	}

	h := g.horizontal()
	jump := false
	g.axis = 0
	if g.mode == timetravel.ControlRewind {
		g.axis = h
		h = 0
	} else {
		jump = g.InputMgr.IsKeyJustPressed(render.KeySpace) ||
			g.InputMgr.IsKeyJustPressed(render.KeyW) ||
			g.InputMgr.IsKeyJustPressed(render.KeyUp)
	}

	if g.InputMgr.IsKeyJustPressed(render.KeyE) {
		g.interact()
	}

	g.stepPhysics(h, jump)

	g.LastErrors = 0
	if err := g.World.Step(); err != nil {
		g.LastErrors = countErrors(err)
		g.Logger.Debug("tick had entity errors", "tick", g.World.WorldTime(), "count", g.LastErrors,
			"error", err)
	}

	// Restored bodies must not carry stale momentum back to the present.
	if g.World.InPast() {
		for _, b := range g.bodies() {
			b.Velocity = geom.Vec3{}
		}
	}

	g.updateLights()
	g.UpdateCamera()
	return nil
}

// updateLights gives every active cube a glow in its state colour.
func (g *Game) updateLights() {
	for _, c := range g.Cubes {
		state := c.Cube.State()
		if state == timetravel.StateOff {
			g.Lights.RemoveCubeLight(c.Cube.Name)
			continue
		}
		radius := glowRadius
		if state == timetravel.StateRewinding {
			radius = glowRadiusRewind
		}
		box := c.box()
		g.Lights.SetCubeLight(c.Cube.Name, box.X+box.W/2, box.Y+box.H/2, radius, glowIntensity, stateColor(state))
	}
}

// Layout returns the game's logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.ScreenWidth, g.ScreenHeight
}

// horizontal reads the left/right input as -1, 0 or 1.
func (g *Game) horizontal() float64 {
	h := 0.0
	if g.InputMgr.IsKeyPressed(render.KeyA) || g.InputMgr.IsKeyPressed(render.KeyLeft) {
		h--
	}
	if g.InputMgr.IsKeyPressed(render.KeyD) || g.InputMgr.IsKeyPressed(render.KeyRight) {
		h++
	}
	return h
}

// interact uses the cube the player is in, or the one in front of them.
// An idle cube starts recording; a recording cube is entered and rewound;
// while rewinding the player replays and steps out.
func (g *Game) interact() {
	if g.inCube != nil {
		if g.mode == timetravel.ControlRewind {
			g.request(g.inCube.Cube, g.World.RequestReplay)
		}
		g.exitCube()
		return
	}
	if !g.Player.Grounded {
		return
	}

	prop := g.CubeInFront()
	if prop == nil {
		return
	}
	c := prop.Cube
	switch {
	case c.IsRecording():
		g.enterCube(prop)
		g.request(c, g.World.RequestRewind)
	case !c.IsRewinding():
		if g.request(c, g.World.RequestRecord) {
			g.ShowMessage(fmt.Sprintf("%s is recording", c.Name))
		}
	}
}

func (g *Game) request(c *timetravel.TimeCube, fn func(int) error) bool {
	if err := fn(c.Index); err != nil {
		g.Logger.Warn("cube request failed", "cube", c.Name, "error", err)
		return false
	}
	return true
}

// CubeInFront returns the cube crossing a vertical probe interactReach in
// front of the player, or nil.
func (g *Game) CubeInFront() *CubeProp {
	root := g.Player.Skeleton.Root()
	x := root.Position().X + root.Facing()*interactReach
	probe := Rect{X: x - 0.05, Y: root.Position().Y + 0.1*playerHeight, W: 0.1, H: 0.8 * playerHeight}
	for _, c := range g.Cubes {
		if probe.Overlaps(c.box()) {
			return c
		}
	}
	return nil
}

// InCube returns the cube the player is sitting in, or nil.
func (g *Game) InCube() *CubeProp {
	return g.inCube
}

func (g *Game) enterCube(prop *CubeProp) {
	g.inCube = prop
	g.Player.Velocity = geom.Vec3{}
	g.Player.Skeleton.Root().SetPosition(prop.Part.Position())
}

// exitCube puts the player back on the floor beside the cube they were in.
func (g *Game) exitCube() {
	root := g.Player.Skeleton.Root()
	pos := g.inCube.Part.Position()
	pos.X -= root.Facing() * interactReach
	root.SetPosition(pos)
	g.Player.Velocity = geom.Vec3{}
	g.inCube = nil
}

// stepPhysics moves the player, then every unfrozen crate and cube. The
// player neither moves nor falls while scrubbing or sitting in a cube.
func (g *Game) stepPhysics(h float64, jump bool) {
	playerFree := g.mode == timetravel.ControlNormal && g.inCube == nil
	if playerFree {
		g.Player.steer(h, jump)
		if !g.frozen {
			g.Player.push(g.Crates)
		}
	}

	if !g.frozen {
		for _, c := range g.Crates {
			stepBody(c, g.dt, g.solids(c))
		}
		for _, c := range g.Cubes {
			stepBody(c.Body, g.dt, g.solids(nil))
		}
	}

	if playerFree {
		g.Player.move(g.dt, g.solids(nil))
	}
}

// solids returns the platforms and every crate except skip.
func (g *Game) solids(skip *Body) []Rect {
	solids := append([]Rect(nil), g.Level.Platforms...)
	for _, c := range g.Crates {
		if c != skip {
			solids = append(solids, c.box())
		}
	}
	return solids
}

func (g *Game) bodies() []*Body {
	bodies := append([]*Body(nil), g.Crates...)
	for _, c := range g.Cubes {
		bodies = append(bodies, c.Body)
	}
	return bodies
}

func countErrors(err error) int {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return len(joined.Unwrap())
	}
	return 1
}

// UpdateCamera centres the view on the player, clamped to the level.
func (g *Game) UpdateCamera() {
	viewW := float64(g.ScreenWidth) / PixelsPerUnit
	viewH := float64(g.ScreenHeight) / PixelsPerUnit
	pos := g.Player.Skeleton.Root().Position()

	g.Camera.X = pos.X - viewW/2
	g.Camera.X = math.Max(-1, math.Min(g.Camera.X, g.Level.Width+1-viewW))
	g.Camera.Y = math.Max(-1, pos.Y-viewH/3)
}

func (g *Game) updateMessages(dt float64) {
	var active []Message
	for _, msg := range g.Messages {
		msg.TimeLeft -= dt
		if msg.TimeLeft > 0 {
			active = append(active, msg)
		}
	}
	g.Messages = active
}

// ShowMessage adds a new message to be displayed on screen.
func (g *Game) ShowMessage(text string) {
	g.Messages = append(g.Messages, Message{
		Text:     text,
		TimeLeft: 3.0,
		MaxTime:  3.0,
	})
	g.Logger.Debug("message", "text", text)
}
