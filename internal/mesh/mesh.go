// Package mesh converts a single-channel depth map into an
// adaptive-resolution triangle mesh, recomputed every frame.
//
// The algorithm works in two ordered sweeps over a padded quadtree:
//   - Bottom-up (LOD ascending), each block computes a simplification error,
//     mean distance and disocclusion flag from its 3×3 node neighborhood and
//     its 4 children, deciding whether it could stand in for its subtree.
//   - Top-down (LOD descending), each eligible block claims its region,
//     disables its descendants, and emits a crack-free triangulation whose
//     boundary is recursively subdivided against finer neighbors so regions
//     meeting across an LOD change share exactly coincident vertices.
//
// Spurious "rubber sheet" triangles bridging depth discontinuities and
// triangles touching far-range background are rejected at emission time.
//
// Within a sweep the per-block work is embarrassingly parallel; the only
// cross-unit structures are the append-only triangle list and the idempotent
// vertex slots. All ordering lives between dispatches, never inside one.
package mesh

import (
	"io"
	"log"
	"os"
	"sync/atomic"
	"time"

	"github.com/irfansharif/relief/internal/depth"
	"github.com/irfansharif/relief/internal/dispatch"
	"github.com/irfansharif/relief/internal/grid"
)

var meshLogger *log.Logger = log.New(io.Discard, "", 0)

func init() {
	if os.Getenv("RELIEF_DEBUG_MESH") == "1" {
		meshLogger = log.New(os.Stdout, "[mesh] ", log.Ltime|log.Lmsgprefix)
	}
}

// Stats tracks performance metrics for the last remesh.
type Stats struct {
	LastRemeshTimeMs float64
	Triangles        int
	WriteBlocks      int // blocks that emitted geometry
	MaxLOD           int
}

// Mesher runs the two-pass simplification over a worker pool, reusing its
// output buffers across frames of the same resolution.
type Mesher struct {
	pool    *dispatch.Pool
	buffers *Buffers
	stats   Stats
}

// NewMesher creates a mesher running its sweeps on the given pool.
func NewMesher(pool *dispatch.Pool) *Mesher {
	return &Mesher{pool: pool}
}

// Stats returns metrics for the last Remesh call.
func (m *Mesher) Stats() Stats {
	return m.stats
}

// frame bundles the per-frame inputs the pass bodies need.
type frame struct {
	cfg    Config
	layout grid.Layout
	recon  reconstructor
	out    *Buffers

	near, far float32

	writeBlocks atomic.Int64
}

// Remesh rebuilds the mesh for one frame of the depth source. The returned
// buffers are owned by the mesher and valid until the next call.
//
// The driver contract from the shader lineage holds: the bottom-up pass runs
// once per LOD ascending and must fully complete per level before the next
// (parents read finalized children), then the top-down pass runs descending
// with the mirrored constraint (children read their status as finalized by
// parents). ForEach2D provides the full-completion barrier.
func (m *Mesher) Remesh(src depth.Source, cfg Config) *Buffers {
	start := time.Now()

	w, h := src.Resolution()
	layout := grid.NewLayout(paddedSize(w, h))
	if m.buffers == nil || m.buffers.Layout != layout {
		m.buffers = NewBuffers(layout)
	} else {
		m.buffers.Reset()
	}

	near, far := src.Range()
	f := &frame{
		cfg:    cfg,
		layout: layout,
		recon:  newReconstructor(src),
		out:    m.buffers,
		near:   near,
		far:    far,
	}

	for lod := 0; lod <= layout.MaxLOD; lod++ {
		side := layout.BlocksPerSide(lod)
		l := lod
		m.pool.ForEach2D(side, side, func(bx, by int) {
			f.evaluateBlock(l, bx, by)
		})
	}
	for lod := layout.MaxLOD; lod >= 0; lod-- {
		side := layout.BlocksPerSide(lod)
		l := lod
		m.pool.ForEach2D(side, side, func(bx, by int) {
			f.splitBlock(l, bx, by)
		})
	}

	m.stats = Stats{
		LastRemeshTimeMs: float64(time.Since(start).Microseconds()) / 1000.0,
		Triangles:        m.buffers.TriangleCount(),
		WriteBlocks:      int(f.writeBlocks.Load()),
		MaxLOD:           layout.MaxLOD,
	}
	meshLogger.Printf("remesh %dx%d (padded %d): %d triangles, %d write blocks, %.2fms",
		w, h, layout.Padded, m.stats.Triangles, m.stats.WriteBlocks, m.stats.LastRemeshTimeMs)
	return m.buffers
}

// paddedSize returns the next power of two covering both source dimensions.
func paddedSize(w, h int) int {
	n := w
	if h > n {
		n = h
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
