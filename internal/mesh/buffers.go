package mesh

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/irfansharif/relief/internal/grid"
)

// Status is the tri-state quadtree block status.
type Status uint8

const (
	// StatusRecurse defers the block to finer LODs. It is the zero value so a
	// cleared state buffer starts every block deferred.
	StatusRecurse Status = iota
	// StatusWrite marks the block eligible and unclaimed; it emits geometry
	// during the top-down sweep.
	StatusWrite
	// StatusDisabled marks the block as covered by an ancestor's emitted
	// geometry.
	StatusDisabled
)

func (s Status) String() string {
	switch s {
	case StatusRecurse:
		return "recurse"
	case StatusWrite:
		return "write"
	case StatusDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// State is the per-block quadtree record. The bottom-up pass writes it once;
// the top-down pass only ever overwrites Status to StatusDisabled.
type State struct {
	Status       Status
	RubberSheet  bool
	Error        float32
	MeanDistance float32
}

// Buffers holds every output surface of a remesh, GPU-structured-buffer
// style: flat slices indexed by the grid layout's precomputed offsets. Each
// parallel unit exclusively owns the slots it writes; prior-pass output is
// read-only. The triangle list is the one concurrently appended structure,
// and vertex slots tolerate redundant idempotent writes from units that
// materialize the same shared node.
type Buffers struct {
	Layout grid.Layout

	// States holds one State per block per LOD, at grid.Layout.StateIndex
	// offsets.
	States []State

	// AccumError records, per block, the error of the ancestor that stopped
	// recursion over it. Diagnostic output; never read back by the passes.
	AccumError []float32

	// Positions caches raw view-space node positions, filled during the LOD-0
	// bottom-up pass and read-only afterwards.
	Positions []mgl32.Vec3

	// VertexPos and VertexUV are the lazily materialized vertex buffers,
	// indexed by grid.Layout.VertexIndex.
	VertexPos []mgl32.Vec3
	VertexUV  []mgl32.Vec2

	// Triangles holds vertex-buffer index triples; append-only, unordered.
	Triangles []uint32

	triMu sync.Mutex
}

// NewBuffers allocates all output surfaces for a layout.
func NewBuffers(layout grid.Layout) *Buffers {
	return &Buffers{
		Layout:     layout,
		States:     make([]State, layout.StateSlots()),
		AccumError: make([]float32, layout.StateSlots()),
		Positions:  make([]mgl32.Vec3, layout.CacheSlots()),
		VertexPos:  make([]mgl32.Vec3, layout.VertexSlots()),
		VertexUV:   make([]mgl32.Vec2, layout.VertexSlots()),
	}
}

// Reset prepares the buffers for the next frame. Slot contents other than the
// states and the triangle list need no clearing: the passes rewrite every
// slot they later read.
func (b *Buffers) Reset() {
	for i := range b.States {
		b.States[i] = State{}
	}
	for i := range b.AccumError {
		b.AccumError[i] = 0
	}
	b.Triangles = b.Triangles[:0]
}

// AppendTriangle appends one triangle's vertex indices. Safe for concurrent
// use; triangle order is unspecified.
func (b *Buffers) AppendTriangle(i0, i1, i2 uint32) {
	b.triMu.Lock()
	b.Triangles = append(b.Triangles, i0, i1, i2)
	b.triMu.Unlock()
}

// TriangleCount returns the number of appended triangles.
func (b *Buffers) TriangleCount() int {
	return len(b.Triangles) / 3
}

// StateAt is a convenience accessor for tests and external consumers.
func (b *Buffers) StateAt(lod, bx, by int) State {
	return b.States[b.Layout.StateIndex(lod, bx, by)]
}
