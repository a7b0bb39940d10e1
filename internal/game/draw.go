package game

import (
	"fmt"
	"image/color"
	"strings"

	"chosenoffset.com/timecube/internal/render"
	"chosenoffset.com/timecube/internal/scenario"
	"chosenoffset.com/timecube/internal/timetravel"
)

var (
	colorSky      = color.NRGBA{24, 26, 38, 255}
	colorFrozen   = color.NRGBA{18, 30, 52, 255}
	colorPlatform = color.NRGBA{80, 86, 104, 255}
	colorCrate    = color.NRGBA{150, 104, 60, 255}
	colorOutline  = color.NRGBA{20, 20, 20, 255}
	colorPlayer   = color.NRGBA{235, 235, 210, 255}
	colorText     = color.NRGBA{255, 255, 255, 255}
	colorBattery  = color.NRGBA{120, 230, 120, 255}
)

// stateColor is the cube body colour for each level state.
func stateColor(s timetravel.CubeState) color.NRGBA {
	switch s {
	case timetravel.StateRecording:
		return color.NRGBA{220, 60, 60, 255}
	case timetravel.StateRewinding:
		return color.NRGBA{70, 120, 230, 255}
	case timetravel.StateReplaying:
		return color.NRGBA{70, 200, 110, 255}
	default:
		return color.NRGBA{130, 130, 140, 255}
	}
}

// Draw renders the game to the screen.
func (g *Game) Draw(screen render.Image) {
	if g.Renderer == nil {
		return
	}
	if g.pixel == nil {
		g.pixel = g.Renderer.NewImage(1, 1)
		g.pixel.Fill(color.White)
	}

	if g.frozen {
		screen.Fill(colorFrozen)
	} else {
		screen.Fill(colorSky)
	}

	g.drawPlatforms(screen)
	g.drawCrates(screen)
	g.drawCubes(screen)
	g.drawGhosts(screen)
	if g.inCube == nil {
		g.drawSkeleton(screen, g.Player.Skeleton, colorPlayer, 1)
	}
	g.drawLights(screen)

	g.drawTimeline(screen)
	g.drawUI(screen)
	if g.ShowDebug {
		g.drawDebug(screen)
	}
}

// toScreen converts a world position to screen pixels.
func (g *Game) toScreen(x, y float64) (float64, float64) {
	return (x - g.Camera.X) * PixelsPerUnit, float64(g.ScreenHeight) - (y-g.Camera.Y)*PixelsPerUnit
}

// fillWorldRect fills a world-space rectangle.
func (g *Game) fillWorldRect(screen render.Image, r Rect, clr color.Color) {
	x, y := g.toScreen(r.X, r.Top())
	g.Renderer.FillRect(screen, float32(x), float32(y), float32(r.W*PixelsPerUnit), float32(r.H*PixelsPerUnit), clr)
}

func (g *Game) strokeWorldRect(screen render.Image, r Rect, clr color.Color) {
	x, y := g.toScreen(r.X, r.Top())
	g.Renderer.StrokeRect(screen, float32(x), float32(y), float32(r.W*PixelsPerUnit), float32(r.H*PixelsPerUnit), 2, clr)
}

func (g *Game) drawPlatforms(screen render.Image) {
	for _, p := range g.Level.Platforms {
		g.fillWorldRect(screen, p, colorPlatform)
	}
}

func (g *Game) drawCrates(screen render.Image) {
	for _, c := range g.Crates {
		g.fillWorldRect(screen, c.box(), colorCrate)
		g.strokeWorldRect(screen, c.box(), colorOutline)
	}
}

func (g *Game) drawCubes(screen render.Image) {
	t := g.World.WorldTime()
	for _, c := range g.Cubes {
		box := c.box()
		g.fillWorldRect(screen, box, stateColor(c.Cube.State()))
		g.strokeWorldRect(screen, box, colorOutline)

		if c.Cube.IsRecording() {
			left := float64(c.Cube.BatteryLeft(t)) / float64(c.Cube.BatteryLife)
			bar := Rect{X: box.X, Y: box.Top() + 0.15, W: box.W * max(0, left), H: 0.1}
			g.fillWorldRect(screen, bar, colorBattery)
		}

		x, y := g.toScreen(box.X, box.Top()+0.7)
		g.Renderer.DrawText(screen, c.Cube.Name, int(x), int(y), colorText, 1.0)
	}
}

// drawGhosts draws every unparked ghost, tinted by its cube's state.
func (g *Game) drawGhosts(screen render.Image) {
	for _, c := range g.Cubes {
		ghost, ok := g.ghosts[c.Cube]
		if !ok || ghost.Root().Position().Y >= scenario.ParkHeight/2 {
			continue
		}
		g.drawSkeleton(screen, ghost, stateColor(c.Cube.State()), 0.55)
	}
}

// drawSkeleton draws limbs as rotated bars and the head as a circle. The
// figure is mirrored when its root faces left.
func (g *Game) drawSkeleton(screen render.Image, s *Skeleton, tint color.NRGBA, alpha float32) {
	root := s.Root()
	base := root.Position()
	facing := root.Facing()

	for _, p := range s.Parts[1:] {
		off := p.Position()
		jx, jy := g.toScreen(base.X+off.X*facing, base.Y+off.Y)

		switch p.Kind {
		case PartHead:
			head := tint
			head.A = uint8(float32(head.A) * alpha)
			g.Renderer.FillCircle(screen, float32(jx), float32(jy), float32(p.Length*PixelsPerUnit), head)
		case PartUp, PartDown:
			w, l := p.Width*PixelsPerUnit, p.Length*PixelsPerUnit
			gm := render.NewGeoM()
			gm.Scale(w, l)
			if p.Kind == PartUp {
				gm.Translate(-w/2, -l)
			} else {
				gm.Translate(-w/2, 0)
			}
			gm.Rotate(-p.Angle() * facing)
			gm.Translate(jx, jy)
			screen.DrawImage(g.pixel, &render.DrawImageOptions{GeoM: gm, Color: tint, Alpha: alpha})
		}
	}
}

// drawLights dims the scene to the ambient level, then layers each glow as
// rings sampled from its falloff.
func (g *Game) drawLights(screen render.Image) {
	if ambient := g.Lights.GetAmbientLight(); ambient < 1 {
		shade := uint8(255 * (1 - ambient) * 0.5)
		g.Renderer.FillRect(screen, 0, 0, float32(g.ScreenWidth), float32(g.ScreenHeight), color.NRGBA{0, 0, 0, shade})
	}

	const rings = 4
	for _, l := range g.Lights.GetAllLights() {
		x, y := g.toScreen(l.X, l.Y)
		for i := rings; i >= 1; i-- {
			r := l.Radius * float64(i) / rings
			clr := l.Color
			clr.A = uint8(255 * l.Falloff(r-l.Radius/rings) / rings)
			g.Renderer.FillCircle(screen, float32(x), float32(y), float32(r*PixelsPerUnit), clr)
		}
	}
}

// drawTimeline shows the rewound interval and the scrub position along the
// bottom of the screen.
func (g *Game) drawTimeline(screen render.Image) {
	rc := g.World.Manager().RewindingCube()
	if rc == nil {
		return
	}
	iv, ok := rc.RewindInterval()
	if !ok || iv.Len() < 2 {
		return
	}

	w := float32(g.ScreenWidth - 40)
	y := float32(g.ScreenHeight - 24)
	g.Renderer.FillRect(screen, 20, y, w, 6, colorPlatform)
	pos := float32(rc.RewindPosition() / float64(iv.Len()-1))
	g.Renderer.FillCircle(screen, 20+pos*w, y+3, 7, stateColor(timetravel.StateRewinding))
	g.Renderer.DrawText(screen, fmt.Sprintf("%d", iv.Start), 20, int(y)-18, colorText, 1.0)
	g.Renderer.DrawText(screen, fmt.Sprintf("%d", iv.End), int(20+w)-24, int(y)-18, colorText, 1.0)
}

func (g *Game) drawUI(screen render.Image) {
	status := fmt.Sprintf("t = %d   furthest = %d", g.World.WorldTime(), g.World.FurthestTime())
	if g.World.InPast() {
		status += "   (past)"
	}
	g.Renderer.DrawText(screen, status, 20, 10, colorText, 1.0)

	hint := "A/D move  Space jump  E use cube  Tab debug  Esc menu"
	if g.mode == timetravel.ControlRewind {
		hint = "A/D scrub  E replay and exit"
	}
	g.Renderer.DrawText(screen, hint, 20, 28, colorText, 1.0)

	// Draw on-screen messages
	y := 50.0
	for _, msg := range g.Messages {
		alpha := uint8(255 * (msg.TimeLeft / msg.MaxTime))
		g.Renderer.DrawText(screen, msg.Text, 20, int(y), color.NRGBA{255, 255, 255, alpha}, 1.0)
		y += 20
	}
}

// drawDebug prints the clock and every cube in the top-right corner.
func (g *Game) drawDebug(screen render.Image) {
	lines := []string{g.World.String()}
	lines = append(lines, strings.Split(strings.TrimSpace(g.World.Manager().String()), "\n")...)
	if g.LastErrors > 0 {
		lines = append(lines, fmt.Sprintf("entity errors this tick: %d", g.LastErrors))
	}

	y := 10
	for _, line := range lines {
		w, h := g.Renderer.MeasureText(line, 1.0)
		g.Renderer.DrawText(screen, line, g.ScreenWidth-w-20, y, colorText, 1.0)
		y += h + 2
	}
}
