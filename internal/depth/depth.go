// Package depth provides single-channel depth maps: the normalized-coordinate
// sample source consumed by the mesher, an in-memory implementation, file
// loading, and synthetic test scenes.
package depth

import (
	"log"
	"math"
)

// Source is a depth map addressable by normalized coordinates. Samples are
// encoded distances in [0,1]; decoding into the metric [near, far] range is
// the projection layer's concern.
type Source interface {
	// Sample returns the encoded sample nearest to the normalized coordinate.
	Sample(u, v float64) float32
	// Resolution returns the source pixel dimensions.
	Resolution() (w, h int)
	// FOV returns the horizontal and vertical fields of view in degrees.
	FOV() (hDeg, vDeg float64)
	// Range returns the distance range the samples encode.
	Range() (near, far float32)
}

// Map is an in-memory depth map with row-major encoded samples.
type Map struct {
	W, H    int
	HFOVDeg float64
	VFOVDeg float64
	Near    float32
	Far     float32
	Samples []float32
}

// NewMap allocates a zeroed depth map.
func NewMap(w, h int, hfovDeg, vfovDeg float64, near, far float32) *Map {
	if w <= 0 || h <= 0 {
		log.Fatalf("depth map dimensions must be positive, got %dx%d", w, h)
	}
	return &Map{
		W: w, H: h,
		HFOVDeg: hfovDeg, VFOVDeg: vfovDeg,
		Near: near, Far: far,
		Samples: make([]float32, w*h),
	}
}

// At returns the encoded sample at a pixel coordinate. The caller is expected
// to stay in bounds.
func (m *Map) At(px, py int) float32 {
	return m.Samples[py*m.W+px]
}

// Set writes the encoded sample at a pixel coordinate.
func (m *Map) Set(px, py int, s float32) {
	m.Samples[py*m.W+px] = s
}

// Sample implements Source. The horizontal coordinate wraps modulo 1 for
// omnidirectional captures (FOV > 180°) and is clamped afterwards; the
// vertical coordinate is clamped.
func (m *Map) Sample(u, v float64) float32 {
	if m.HFOVDeg > 180 {
		u = u - math.Floor(u)
	}
	px := clampInt(int(u*float64(m.W)), 0, m.W-1)
	py := clampInt(int(v*float64(m.H)), 0, m.H-1)
	return m.At(px, py)
}

// Resolution implements Source.
func (m *Map) Resolution() (int, int) { return m.W, m.H }

// FOV implements Source.
func (m *Map) FOV() (float64, float64) { return m.HFOVDeg, m.VFOVDeg }

// Range implements Source.
func (m *Map) Range() (float32, float32) { return m.Near, m.Far }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
