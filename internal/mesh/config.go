package mesh

// ProjectionMode selects the coordinates written to the vertex buffer.
type ProjectionMode int

const (
	// ProjectionViewSpace emits raw view-space positions.
	ProjectionViewSpace ProjectionMode = iota
	// ProjectionMinPlane emits positions re-projected onto the fixed
	// minimum-distance plane (every vertex at the near range).
	ProjectionMinPlane
	// ProjectionEquirect emits unit-sphere equirectangular positions.
	ProjectionEquirect
)

func (m ProjectionMode) String() string {
	switch m {
	case ProjectionViewSpace:
		return "view-space"
	case ProjectionMinPlane:
		return "min-plane"
	case ProjectionEquirect:
		return "equirect"
	default:
		return "unknown"
	}
}

// DisocclusionMode selects how disocclusion edges are handled.
type DisocclusionMode int

const (
	// DisocclusionOff keeps all geometry; no rubber-sheet classification
	// happens anywhere.
	DisocclusionOff DisocclusionMode = iota
	// DisocclusionRubberSheet flags and removes triangles bridging depth
	// discontinuities.
	DisocclusionRubberSheet
)

func (m DisocclusionMode) String() string {
	switch m {
	case DisocclusionOff:
		return "off"
	case DisocclusionRubberSheet:
		return "rubber-sheet"
	default:
		return "unknown"
	}
}

// Config carries the per-frame meshing parameters. Everything else the passes
// need (resolution, FOV, distance range) comes from the depth source.
type Config struct {
	// K scales the distance-adaptive simplification threshold: a block is
	// collapsible when its error is below K times its mean distance, so
	// proportionally larger absolute error is tolerated farther from the
	// camera.
	K float32

	Projection   ProjectionMode
	Disocclusion DisocclusionMode

	// RemoveBackground drops triangles touching far-range ("no data")
	// vertices.
	RemoveBackground bool

	// OrthoThreshold is the rubber-sheet orthogonality cutoff: triangles
	// whose normal is closer to perpendicular against the view direction than
	// this are disocclusion-bridge candidates.
	OrthoThreshold float32

	// TriSizeThreshold is the rubber-sheet size cutoff as a fraction of the
	// centroid's distance from the camera.
	TriSizeThreshold float32

	// BackgroundTolerance classifies a vertex as background when its distance
	// is within this tolerance of the far range.
	BackgroundTolerance float32
}

// DefaultConfig returns the parameters used by the demo viewer.
func DefaultConfig() Config {
	return Config{
		K:                   0.02,
		Projection:          ProjectionViewSpace,
		Disocclusion:        DisocclusionRubberSheet,
		RemoveBackground:    true,
		OrthoThreshold:      0.1,
		TriSizeThreshold:    0.1,
		BackgroundTolerance: 0.01,
	}
}
