// Package lighting keeps the glow sources drawn over the level: one per
// active time cube, dimmed against an ambient level that drops while time is
// stopped.
package lighting

import (
	"image/color"
	"math"
	"sort"
)

// LightSource represents a single light source in the game world
type LightSource struct {
	X         float64     // World X position (in units)
	Y         float64     // World Y position (in units)
	Radius    float64     // Light radius (in units)
	Intensity float64     // Light intensity (0.0 to 1.0)
	Color     color.NRGBA // Light color
}

// Falloff returns the light's strength at distance d from its centre. It
// fades quadratically to zero at the radius.
func (l LightSource) Falloff(d float64) float64 {
	if l.Radius <= 0 || d >= l.Radius {
		return 0
	}
	f := 1 - math.Max(d, 0)/l.Radius
	return l.Intensity * f * f
}

// Manager handles all light sources in the game
type Manager struct {
	ambientLight float64 // Global ambient light level (0.0 = pitch black, 1.0 = fully lit)
	cubeLights   map[string]*LightSource
}

// NewManager creates a new lighting manager with full ambient light.
func NewManager() *Manager {
	return &Manager{
		ambientLight: 1.0,
		cubeLights:   make(map[string]*LightSource),
	}
}

// SetAmbientLight sets the global ambient light level, clamped to [0, 1].
func (m *Manager) SetAmbientLight(level float64) {
	m.ambientLight = math.Max(0, math.Min(1, level))
}

// GetAmbientLight returns the current ambient light level
func (m *Manager) GetAmbientLight() float64 {
	return m.ambientLight
}

// SetCubeLight adds or moves the glow of the named cube.
func (m *Manager) SetCubeLight(name string, x, y, radius, intensity float64, col color.NRGBA) {
	light, ok := m.cubeLights[name]
	if !ok {
		light = &LightSource{}
		m.cubeLights[name] = light
	}
	light.X = x
	light.Y = y
	light.Radius = radius
	light.Intensity = intensity
	light.Color = col
}

// RemoveCubeLight turns off the named cube's glow.
func (m *Manager) RemoveCubeLight(name string) {
	delete(m.cubeLights, name)
}

// GetAllLights returns all active light sources ordered by cube name.
func (m *Manager) GetAllLights() []LightSource {
	names := make([]string, 0, len(m.cubeLights))
	for name := range m.cubeLights {
		names = append(names, name)
	}
	sort.Strings(names)

	lights := make([]LightSource, 0, len(names))
	for _, name := range names {
		lights = append(lights, *m.cubeLights[name])
	}
	return lights
}

// ClearCubeLights removes all cube lights (called when loading new level)
func (m *Manager) ClearCubeLights() {
	m.cubeLights = make(map[string]*LightSource)
}
