package mesh

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Per-triangle acceptance heuristics applied at emission time, and the local
// candidate check feeding the bottom-up rubber-sheet flag.

// isRubberSheet reports whether a triangle looks like a disocclusion bridge:
// its normal is nearly perpendicular to the camera-to-centroid direction (a
// surface facing sideways toward the camera) while its longest edge is large
// relative to its distance. A heuristic, not exact occlusion reasoning.
func isRubberSheet(a, b, c mgl32.Vec3, orthoThreshold, sizeThreshold float32) bool {
	normal := b.Sub(a).Cross(c.Sub(a))
	nl := normal.Len()
	if nl == 0 {
		return false // degenerate; the zero-area triangle bridges nothing
	}

	centroid := a.Add(b).Add(c).Mul(1.0 / 3.0)
	cl := centroid.Len()
	if cl == 0 {
		return false
	}

	ortho := normal.Dot(centroid) / (nl * cl)
	if ortho < 0 {
		ortho = -ortho
	}
	if ortho >= orthoThreshold {
		return false
	}

	longest := b.Sub(a).Len()
	if e := c.Sub(b).Len(); e > longest {
		longest = e
	}
	if e := a.Sub(c).Len(); e > longest {
		longest = e
	}
	return longest > sizeThreshold*cl
}

// isBackground reports whether a vertex distance classifies as background:
// within tolerance of the far range, or 0 ("no data", which the reconstructor
// produces where no valid sample exists).
func (f *frame) isBackground(dist float32) bool {
	return dist == 0 || dist >= f.far-f.cfg.BackgroundTolerance
}
