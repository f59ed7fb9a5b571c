package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/irfansharif/relief/internal/grid"
	"github.com/irfansharif/relief/internal/project"
)

// Top-down pass: block-split decisions and crack-free triangulation. Runs LOD
// descending; a parent decides and disables before its children are examined.
// A dispatch at LOD l writes only LOD l-1 status slots, and only under Write
// or Disabled parents, which never sit across a subdivided edge from a
// same-dispatch reader, so every status read below is stable.

// maxSplitDepth caps the crack-elimination recursion. Beyond it a residual
// visual crack is tolerated rather than subdividing further.
const maxSplitDepth = 6

type direction int

const (
	dirNorth direction = iota // toward -y
	dirEast                   // toward +x
	dirSouth                  // toward +y
	dirWest                   // toward -x
)

// splitBlock is the pass-2 unit of work for one block coordinate.
func (f *frame) splitBlock(lod, bx, by int) {
	if !f.layout.InBounds(lod, bx, by) {
		return
	}

	idx := f.layout.StateIndex(lod, bx, by)
	st := f.out.States[idx]
	switch st.Status {
	case StatusDisabled:
		// Covered by an ancestor; forward the claim and its accumulated error
		// down the subtree.
		f.claimChildren(lod, bx, by, f.out.AccumError[idx])
	case StatusRecurse:
		// Deferred; the sweep evaluates the children independently when it
		// reaches their LOD.
	case StatusWrite:
		f.writeBlocks.Add(1)
		f.emitBlock(lod, bx, by, st)
		f.claimChildren(lod, bx, by, st.Error)
	}
}

// claimChildren disables the 4 children and records the error incurred by
// stopping recursion over them.
func (f *frame) claimChildren(lod, bx, by int, accum float32) {
	if lod == 0 {
		return
	}
	for _, c := range [4][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		cx, cy := grid.Child(bx, by, c[0], c[1])
		ci := f.layout.StateIndex(lod-1, cx, cy)
		f.out.States[ci].Status = StatusDisabled
		f.out.AccumError[ci] = accum
	}
}

// emitBlock triangulates a Write block. When no boundary needs subdividing
// and the block passes the collapse threshold, the center node collapses and
// two corner triangles cover the block; otherwise 4 candidate triangles fan
// from the center to the compass edges, each outward edge recursively
// subdivided against finer neighbors.
func (f *frame) emitBlock(lod, bx, by int, st State) {
	node := func(ix, iy int) [2]int {
		nx, ny := f.layout.BlockNode(lod, bx, by, ix, iy)
		return [2]int{nx, ny}
	}
	n00, n20, n22, n02 := node(0, 0), node(2, 0), node(2, 2), node(0, 2)
	center := node(1, 1)

	edges := [4]struct {
		a, b [2]int
		dir  direction
	}{
		{n00, n20, dirNorth},
		{n20, n22, dirEast},
		{n22, n02, dirSouth},
		{n02, n00, dirWest},
	}

	anySplit := false
	for _, e := range edges {
		if f.segmentNeedsSplit(e.a, e.b, lod, e.dir) {
			anySplit = true
			break
		}
	}
	if !anySplit && f.collapsible(st) {
		f.emitTriangle(n00, n20, n22)
		f.emitTriangle(n00, n22, n02)
		return
	}

	for _, e := range edges {
		f.emitEdgeFan(center, e.a, e.b, lod, e.dir, 0)
	}
}

// emitEdgeFan emits the fan triangles between the block center and one
// boundary segment, splitting the segment in half at LOD-1 while the adjacent
// block in that direction defers to finer geometry. Recursion stops at the
// fixed depth ceiling, at LOD 0, or as soon as a sub-segment's neighbor no
// longer recurses, which guarantees boundaries between differently-scaled
// regions meet at exactly coincident vertices.
func (f *frame) emitEdgeFan(apex, a, b [2]int, lod int, dir direction, depth int) {
	if depth < maxSplitDepth && lod > 0 && f.segmentNeedsSplit(a, b, lod, dir) {
		mid := [2]int{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2}
		f.emitEdgeFan(apex, a, mid, lod-1, dir, depth+1)
		f.emitEdgeFan(apex, mid, b, lod-1, dir, depth+1)
		return
	}
	f.emitTriangle(apex, a, b)
}

// segmentNeedsSplit reports whether the block across the given boundary
// segment, at the segment's own LOD, defers to finer geometry. Disabled
// neighbors were claimed by an ancestor whose subdivision already stopped at
// this segment's spacing; Write neighbors emit at equal scale. Out-of-bounds
// neighbors never force a split.
func (f *frame) segmentNeedsSplit(a, b [2]int, lod int, dir direction) bool {
	span := 1 << (lod + 1) // node extent of one block at this LOD

	var nbx, nby int
	switch dir {
	case dirNorth:
		nbx = min(a[0], b[0]) / span
		nby = a[1]/span - 1
	case dirSouth:
		nbx = min(a[0], b[0]) / span
		nby = a[1] / span
	case dirEast:
		nbx = a[0] / span
		nby = min(a[1], b[1]) / span
	case dirWest:
		nbx = a[0]/span - 1
		nby = min(a[1], b[1]) / span
	}

	if !f.layout.InBounds(lod, nbx, nby) {
		return false
	}
	return f.out.States[f.layout.StateIndex(lod, nbx, nby)].Status == StatusRecurse
}

// emitTriangle applies the per-triangle filters and appends the triangle's
// lazily materialized vertices.
func (f *frame) emitTriangle(na, nb, nc [2]int) {
	pa := f.out.Positions[f.layout.CacheIndex(na[0], na[1])]
	pb := f.out.Positions[f.layout.CacheIndex(nb[0], nb[1])]
	pc := f.out.Positions[f.layout.CacheIndex(nc[0], nc[1])]

	if f.cfg.Disocclusion == DisocclusionRubberSheet &&
		isRubberSheet(pa, pb, pc, f.cfg.OrthoThreshold, f.cfg.TriSizeThreshold) {
		return
	}
	if f.cfg.RemoveBackground &&
		(f.isBackground(pa.Len()) || f.isBackground(pb.Len()) || f.isBackground(pc.Len())) {
		return
	}

	f.out.AppendTriangle(f.materializeVertex(na), f.materializeVertex(nb), f.materializeVertex(nc))
}

// materializeVertex writes a node's vertex-buffer slot and returns its index.
// Identical inputs always reproduce identical outputs, so redundant writes
// from units sharing the node are benign.
func (f *frame) materializeVertex(n [2]int) uint32 {
	vi := f.layout.VertexIndex(n[0], n[1])
	raw := f.out.Positions[f.layout.CacheIndex(n[0], n[1])]

	var pos mgl32.Vec3
	switch f.cfg.Projection {
	case ProjectionMinPlane:
		if l := raw.Len(); l > 0 {
			pos = raw.Mul(f.near / l)
		}
	case ProjectionEquirect:
		u := float64(n[0]) / float64(2*f.recon.w)
		v := float64(n[1]) / float64(2*f.recon.h)
		pos = project.Equirect(u, v)
	default:
		pos = raw
	}

	f.out.VertexPos[vi] = pos
	f.out.VertexUV[vi] = f.recon.nodeUV(n[0], n[1])
	return uint32(vi)
}
