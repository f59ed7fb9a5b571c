package depth

import (
	"math"

	"github.com/irfansharif/relief/internal/project"
)

// Synthetic scenes used by the demo viewer and tests.

// FlatPlane returns a map with every sample at the given metric distance.
func FlatPlane(w, h int, hfovDeg, vfovDeg float64, near, far, dist float32) *Map {
	m := NewMap(w, h, hfovDeg, vfovDeg, near, far)
	s := project.EncodeDistance(dist, near, far)
	for i := range m.Samples {
		m.Samples[i] = s
	}
	return m
}

// StepEdge returns a plane at nearDist with its right portion (from the given
// pixel column) pushed back to farDist: a sharp vertical disocclusion edge.
func StepEdge(w, h int, hfovDeg, vfovDeg float64, near, far, nearDist, farDist float32, edgeCol int) *Map {
	m := NewMap(w, h, hfovDeg, vfovDeg, near, far)
	ns := project.EncodeDistance(nearDist, near, far)
	fs := project.EncodeDistance(farDist, near, far)
	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			if px >= edgeCol {
				m.Set(px, py, fs)
			} else {
				m.Set(px, py, ns)
			}
		}
	}
	return m
}

// SphereOverPlane returns a back plane at planeDist with a sphere bulging
// toward the camera at the image center. Depth varies smoothly over the
// sphere and jumps at its silhouette, exercising both the simplifier and the
// disocclusion heuristics.
func SphereOverPlane(w, h int, hfovDeg, vfovDeg float64, near, far, planeDist, sphereDist, radius float32) *Map {
	m := NewMap(w, h, hfovDeg, vfovDeg, near, far)
	plane := project.EncodeDistance(planeDist, near, far)

	cx, cy := float64(w)/2, float64(h)/2
	// Silhouette radius in pixels: a quarter of the smaller side.
	pr := math.Min(float64(w), float64(h)) / 4

	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			dx, dy := (float64(px)+0.5-cx)/pr, (float64(py)+0.5-cy)/pr
			rr := dx*dx + dy*dy
			if rr >= 1 {
				m.Set(px, py, plane)
				continue
			}
			bulge := float32(math.Sqrt(1-rr)) * radius
			m.Set(px, py, project.EncodeDistance(sphereDist-bulge, near, far))
		}
	}
	return m
}
