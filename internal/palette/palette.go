// Package palette provides vertex color generation for mesh rendering. It
// implements HSV-based depth and height ramps.
package palette

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Mode selects how vertices are tinted.
type Mode int

const (
	ModeDepth  Mode = iota // hue ramp over metric distance
	ModeHeight             // hue ramp over vertical position
	ModeFlat               // single neutral color
)

func (m Mode) String() string {
	switch m {
	case ModeDepth:
		return "depth"
	case ModeHeight:
		return "height"
	case ModeFlat:
		return "flat"
	default:
		return "unknown"
	}
}

// Modes lists the cycling order used by the viewer.
var Modes = []Mode{ModeDepth, ModeHeight, ModeFlat}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DepthRamp maps a normalized distance in [0,1] to a warm-to-cool hue ramp:
// near geometry renders warm (orange) and far geometry cool (blue).
func DepthRamp(t float64) color.RGBA {
	t = clamp(t, 0, 1)

	// 30° (orange) sweeping to 240° (blue), with brightness falling off
	// slightly toward the far end so silhouettes read at a glance.
	hue := 30 + t*210
	c := colorful.Hsv(hue, 0.75, 1.0-0.35*t)
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// HeightRamp maps a normalized vertical position in [0,1] to a green-to-white
// terrain-style ramp.
func HeightRamp(t float64) color.RGBA {
	t = clamp(t, 0, 1)

	c := colorful.Hsv(120-60*t, 0.6*(1-t)+0.05, 0.45+0.55*t)
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Flat returns the neutral mesh color used by ModeFlat.
func Flat() color.RGBA {
	return color.RGBA{R: 200, G: 200, B: 205, A: 255}
}
