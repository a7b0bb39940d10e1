package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/timecube/internal/core/geom"
	"chosenoffset.com/timecube/internal/render"
	"chosenoffset.com/timecube/internal/scenario"
	"chosenoffset.com/timecube/internal/simulation"
	"chosenoffset.com/timecube/internal/timetravel"
)

// fakeInput holds keys down until released; taps last one Update.
type fakeInput struct {
	held map[render.Key]bool
	just map[render.Key]bool
}

func newFakeInput() *fakeInput {
	return &fakeInput{held: map[render.Key]bool{}, just: map[render.Key]bool{}}
}

func (f *fakeInput) IsKeyPressed(k render.Key) bool { return f.held[k] }
func (f *fakeInput) IsKeyJustPressed(k render.Key) bool { return f.just[k] }

func (f *fakeInput) tap(k render.Key) { f.just[k] = true }
func (f *fakeInput) hold(k render.Key) { f.held[k] = true }
func (f *fakeInput) release(k render.Key) { delete(f.held, k) }

func emptyLevel() Level {
	return Level{
		Name:        "test",
		Width:       20,
		Platforms:   withBounds(20, nil),
		PlayerSpawn: geom.Vec3{X: 2},
	}
}

func newTestGame(t *testing.T, lvl Level) (*Game, *fakeInput) {
	t.Helper()
	in := newFakeInput()
	g, err := NewGame(simulation.DefaultConfig(), lvl, nil, in, nil, nil)
	require.NoError(t, err)
	return g, in
}

func tick(t *testing.T, g *Game, in *fakeInput, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, g.Update())
		in.just = map[render.Key]bool{}
	}
}

func TestNewGameRegistersHistories(t *testing.T) {
	g, _ := newTestGame(t, DefaultLevel(300))

	m := g.World.Manager()
	require.Len(t, m.Cubes(), 2)
	// Two crates, two cube bodies and one ghost per cube.
	assert.Len(t, m.Histories(), 6)

	for _, c := range g.Cubes {
		ghost, ok := g.Ghost(c.Cube)
		require.True(t, ok)
		assert.Equal(t, float64(scenario.ParkHeight), ghost.Root().Position().Y)
		assert.True(t, c.Cube.Clone().History.IsTimeTraveler())
	}
	assert.Equal(t, 150, g.Cubes[1].Cube.BatteryLife)
}

func TestSpawnCloneNeedsEveryPart(t *testing.T) {
	g, _ := newTestGame(t, emptyLevel())

	var parts []*Part
	for _, p := range g.Player.Skeleton.Parts {
		if p.Name() != "head" {
			parts = append(parts, p)
		}
	}
	g.Player.Skeleton.Parts = parts

	cube, err := timetravel.NewTimeCube("x", 5)
	require.NoError(t, err)
	err = g.World.Manager().AddCube(cube)
	assert.ErrorIs(t, err, timetravel.ErrMissingBone)
	assert.ErrorContains(t, err, `"head"`)
}

func TestPlayerFallsOntoFloor(t *testing.T) {
	lvl := emptyLevel()
	lvl.PlayerSpawn = geom.Vec3{X: 2, Y: 3}
	g, in := newTestGame(t, lvl)

	tick(t, g, in, 60)
	assert.True(t, g.Player.Grounded)
	assert.InDelta(t, 0, g.Player.Skeleton.Root().Position().Y, 1e-9)
	assert.Equal(t, 60, g.World.WorldTime())
}

func TestWalkingTurnsThePlayer(t *testing.T) {
	g, in := newTestGame(t, emptyLevel())
	root := g.Player.Skeleton.Root()

	in.hold(render.KeyD)
	tick(t, g, in, 30)
	assert.Greater(t, root.Position().X, 3.0)
	assert.Equal(t, 1.0, root.Facing())

	legs, ok := g.Player.Skeleton.Part("leg_front")
	require.True(t, ok)
	assert.NotZero(t, legs.Angle(), "walk cycle moves the legs")

	in.release(render.KeyD)
	in.hold(render.KeyLeft)
	tick(t, g, in, 30)
	assert.Equal(t, -1.0, root.Facing())
}

func TestJumpOnlyWhenGrounded(t *testing.T) {
	g, in := newTestGame(t, emptyLevel())
	tick(t, g, in, 1)
	require.True(t, g.Player.Grounded)

	in.tap(render.KeySpace)
	tick(t, g, in, 1)
	assert.False(t, g.Player.Grounded)
	y := g.Player.Skeleton.Root().Position().Y
	assert.Greater(t, y, 0.0)

	vy := g.Player.Velocity.Y
	in.tap(render.KeySpace)
	tick(t, g, in, 1)
	assert.Less(t, g.Player.Velocity.Y, vy, "no second jump in the air")
}

func TestPlayerPushesCrate(t *testing.T) {
	lvl := emptyLevel()
	lvl.Crates = []geom.Vec3{{X: 4}}
	g, in := newTestGame(t, lvl)

	in.hold(render.KeyD)
	tick(t, g, in, 60)
	crate := g.Crates[0].Part.Position()
	assert.Greater(t, crate.X, 4.2)
	assert.LessOrEqual(t, g.Player.Skeleton.Root().Position().X, crate.X-crateSize/2-playerHalfWidth+1e-9)
}

func TestFrozenCrateHangsInAir(t *testing.T) {
	lvl := emptyLevel()
	lvl.Crates = []geom.Vec3{{X: 6, Y: 3}}
	g, in := newTestGame(t, lvl)

	g.SetDynamicsFrozen(true)
	tick(t, g, in, 10)
	assert.Equal(t, 3.0, g.Crates[0].Part.Position().Y)
	assert.NotEmpty(t, g.Messages)
	assert.Equal(t, frozenAmbient, g.Lights.GetAmbientLight())

	g.SetDynamicsFrozen(false)
	tick(t, g, in, 60)
	assert.InDelta(t, 0, g.Crates[0].Part.Position().Y, 1e-9)
	assert.Equal(t, 1.0, g.Lights.GetAmbientLight())
}

func TestScrubAxisFollowsInputWhileRewinding(t *testing.T) {
	g, in := newTestGame(t, emptyLevel())
	in.hold(render.KeyA)

	tick(t, g, in, 1)
	assert.Zero(t, g.ScrubAxis())

	g.SetControlMode(timetravel.ControlRewind)
	x := g.Player.Skeleton.Root().Position().X
	tick(t, g, in, 5)
	assert.Equal(t, -1.0, g.ScrubAxis())
	assert.Equal(t, x, g.Player.Skeleton.Root().Position().X)
}

func TestCubeInFront(t *testing.T) {
	lvl := emptyLevel()
	lvl.Cubes = []CubeSpawn{{Name: "red", BatteryLife: 100, Pos: geom.Vec3{X: 3.2}}}
	g, _ := newTestGame(t, lvl)

	assert.Same(t, g.Cubes[0], g.CubeInFront())

	g.Player.Skeleton.Root().SetFacing(-1)
	assert.Nil(t, g.CubeInFront())
}

func TestCubeGlowFollowsState(t *testing.T) {
	lvl := emptyLevel()
	lvl.Cubes = []CubeSpawn{{Name: "red", BatteryLife: 5, Pos: geom.Vec3{X: 3.2}}}
	g, in := newTestGame(t, lvl)

	tick(t, g, in, 1)
	assert.Empty(t, g.Lights.GetAllLights())

	in.tap(render.KeyE)
	tick(t, g, in, 1)
	lights := g.Lights.GetAllLights()
	require.Len(t, lights, 1)
	assert.Equal(t, stateColor(timetravel.StateRecording), lights[0].Color)
	assert.Equal(t, glowRadius, lights[0].Radius)

	// The battery runs out and the glow goes with it.
	tick(t, g, in, 10)
	assert.True(t, g.Cubes[0].Cube.IsOff())
	assert.Empty(t, g.Lights.GetAllLights())
}

func TestRecordRewindReplayThroughInput(t *testing.T) {
	lvl := emptyLevel()
	lvl.Cubes = []CubeSpawn{{Name: "red", BatteryLife: 100, Pos: geom.Vec3{X: 3.2}}}
	g, in := newTestGame(t, lvl)
	cube := g.Cubes[0].Cube
	root := g.Player.Skeleton.Root()

	tick(t, g, in, 1)
	require.True(t, g.Player.Grounded)

	// Record from tick 2, then walk left.
	in.tap(render.KeyE)
	tick(t, g, in, 1)
	require.True(t, cube.IsRecording())
	in.hold(render.KeyA)
	tick(t, g, in, 20)
	in.release(render.KeyA)
	assert.Equal(t, 22, g.World.WorldTime())

	// Walk back up to the cube and enter it.
	root.SetPosition(geom.Vec3{X: 2})
	root.SetFacing(1)
	in.tap(render.KeyE)
	tick(t, g, in, 1)
	require.True(t, cube.IsRewinding())
	assert.Same(t, g.Cubes[0], g.InCube())
	assert.Equal(t, timetravel.ControlRewind, g.ControlMode())
	assert.True(t, g.Frozen())
	iv, ok := cube.RewindInterval()
	require.True(t, ok)
	assert.Equal(t, timetravel.TimeInterval{Start: 2, End: 22}, iv)

	// Scrub all the way back.
	in.hold(render.KeyA)
	tick(t, g, in, 100)
	in.release(render.KeyA)
	assert.Equal(t, 0.0, cube.RewindPosition())
	assert.Equal(t, 2, g.World.WorldTime())
	assert.True(t, g.World.InPast())
	ghost, ok := g.Ghost(cube)
	require.True(t, ok)
	assert.Equal(t, 2.0, ghost.Root().Position().X)

	// Replay and step out beside the cube.
	in.tap(render.KeyE)
	tick(t, g, in, 1)
	assert.True(t, cube.IsReplaying())
	assert.Nil(t, g.InCube())
	assert.Equal(t, timetravel.ControlNormal, g.ControlMode())
	assert.False(t, g.Frozen())
	assert.InDelta(t, 2.0, root.Position().X, 1e-9)

	// The ghost walks left the way the player did.
	tick(t, g, in, 10)
	assert.Less(t, ghost.Root().Position().X, 2.0)
	assert.Equal(t, -1.0, ghost.Root().Facing())

	tick(t, g, in, 11)
	assert.Equal(t, 23, g.World.WorldTime())
	assert.True(t, cube.IsOff())
	assert.Equal(t, float64(scenario.ParkHeight), ghost.Root().Position().Y)
}

func TestLevelFromScenarioKeepsClearOfWalls(t *testing.T) {
	s, err := scenario.Load("../scenario/testdata/battery.yaml")
	require.NoError(t, err)

	lvl := LevelFromScenario(s)
	assert.Equal(t, "battery", lvl.Name)
	assert.Equal(t, geom.Vec3{X: levelMargin}, lvl.PlayerSpawn)
	assert.Equal(t, []geom.Vec3{{X: 13, Y: 4}}, lvl.Crates)
	require.Len(t, lvl.Cubes, 1)
	assert.Equal(t, CubeSpawn{Name: "red", BatteryLife: 5, Pos: geom.Vec3{X: 6}}, lvl.Cubes[0])
	assert.Equal(t, 30.0, lvl.Width)
}

func TestManagerMenu(t *testing.T) {
	in := newFakeInput()
	m := NewManager(simulation.DefaultConfig(), nil, in, nil, nil, "../scenario/testdata")

	var names []string
	for _, l := range m.Levels {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{"sandbox", "battery", "replay", "two-cubes"}, names)

	in.tap(render.KeyUp)
	require.NoError(t, m.Update())
	assert.Equal(t, 3, m.Selected)
	in.just = map[render.Key]bool{}

	in.tap(render.KeyEnter)
	require.NoError(t, m.Update())
	in.just = map[render.Key]bool{}
	assert.Equal(t, StatePlaying, m.State)
	require.NotNil(t, m.Game)
	assert.Equal(t, "two-cubes", m.Game.Level.Name)
	assert.Len(t, m.Game.Cubes, 2)

	require.NoError(t, m.Update())
	assert.Equal(t, 1, m.Game.World.WorldTime())

	in.tap(render.KeyEscape)
	require.NoError(t, m.Update())
	in.just = map[render.Key]bool{}
	assert.Equal(t, StateTitle, m.State)
	assert.Nil(t, m.Game)

	in.tap(render.KeyEscape)
	assert.ErrorIs(t, m.Update(), render.ErrQuit)
}

func TestManagerLayoutResizesGame(t *testing.T) {
	in := newFakeInput()
	m := NewManager(simulation.DefaultConfig(), nil, in, nil, nil, "")
	require.Len(t, m.Levels, 1)
	require.NoError(t, m.LoadLevel(m.Levels[0]))

	w, h := m.Layout(640, 480)
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
	assert.Equal(t, 640, m.Game.ScreenWidth)
	assert.Equal(t, 480, m.Game.ScreenHeight)
}
