// Package render defines the engine-neutral drawing and input surface the
// game draws through. The ebiten subpackage implements it.
package render

import (
	"errors"
	"image/color"
)

// Renderer draws shapes and debug text. Coordinates are screen pixels.
type Renderer interface {
	NewImage(width, height int) Image

	FillRect(dst Image, x, y, width, height float32, clr color.Color)
	StrokeRect(dst Image, x, y, width, height, strokeWidth float32, clr color.Color)
	FillCircle(dst Image, x, y, radius float32, clr color.Color)

	DrawText(dst Image, text string, x, y int, clr color.Color, scale float64)
	MeasureText(text string, scale float64) (width, height int)
}

// Image is a surface the game fills and draws onto. The 1x1 pixel used
// for limbs is also an Image.
type Image interface {
	Fill(clr color.Color)
	DrawImage(src Image, opts *DrawImageOptions)
}

// DrawImageOptions controls how DrawImage places and tints the source.
type DrawImageOptions struct {
	GeoM GeoM

	// Color tints the source. Nil leaves it unchanged.
	Color color.Color

	// Alpha scales the source alpha. Zero means opaque.
	Alpha float32
}

// GeoM is an affine transform. Calls apply after the ones before them.
type GeoM interface {
	Translate(tx, ty float64)
	Scale(sx, sy float64)
	Rotate(angle float64)
}

// NewGeoM returns an identity transform. The backend sets it in its init.
var NewGeoM func() GeoM

// InputManager reports keyboard state for the current tick.
type InputManager interface {
	IsKeyPressed(key Key) bool
	IsKeyJustPressed(key Key) bool
}

// Key is a keyboard key the game reads.
type Key int

const (
	KeyW Key = iota
	KeyA
	KeyS
	KeyD
	KeyE // use a time cube
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeySpace
	KeyEnter
	KeyTab
	KeyEscape
)

// Game is driven by an Engine: Update once per tick, Draw once per frame.
type Game interface {
	Update() error
	Draw(screen Image)

	// Layout maps the window size to the logical screen size.
	Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int)
}

// Engine owns the window and the game loop.
type Engine interface {
	SetWindowSize(width, height int)
	SetWindowTitle(title string)
	SetWindowResizable(resizable bool)

	// SetTickRate sets how many times per second Update is called.
	SetTickRate(tps int)

	// RunGame blocks until the game returns ErrQuit or fails.
	RunGame(game Game) error
}

// ErrQuit is returned from Game.Update to end the game loop cleanly.
var ErrQuit = errors.New("quit")
