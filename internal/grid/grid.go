// Package grid provides the index arithmetic tying the quadtree together:
// - Flat, non-overlapping state-buffer offsets for (LOD, block) pairs.
// - Dense position-cache indices for node-grid coordinates.
// - Parity-partitioned vertex-buffer indices shared across adjacent blocks.
// - Block/child/node coordinate relations.
package grid

import (
	"log"
	"math/bits"
)

// Layout describes the padded quadtree geometry for one frame. The padded
// resolution is in pixels and must be a power of two; the node grid overlays
// it at doubled resolution, with one extra row and column closing the far
// edges.
type Layout struct {
	Padded int // power-of-two pixel resolution
	MaxLOD int // coarsest level; a single block covers the full extent
}

// NewLayout creates a layout for the given padded resolution.
func NewLayout(padded int) Layout {
	if padded <= 0 || padded&(padded-1) != 0 {
		log.Fatalf("padded resolution must be a positive power of two, got %d", padded)
	}
	return Layout{
		Padded: padded,
		MaxLOD: bits.TrailingZeros(uint(padded)),
	}
}

// BlocksPerSide returns the block-grid side length at the given LOD.
func (l Layout) BlocksPerSide(lod int) int {
	return l.Padded >> lod
}

// BlockCount returns the number of blocks at the given LOD.
func (l Layout) BlockCount(lod int) int {
	side := l.BlocksPerSide(lod)
	return side * side
}

// InBounds reports whether the block coordinate is valid at the given LOD.
// Dispatch grids may be over-padded; callers skip out-of-bounds coordinates
// at entry.
func (l Layout) InBounds(lod, bx, by int) bool {
	if lod < 0 || lod > l.MaxLOD {
		return false
	}
	side := l.BlocksPerSide(lod)
	return bx >= 0 && bx < side && by >= 0 && by < side
}

// StateBase returns the state-buffer offset of the first block at the given
// LOD: the total block count summed over all finer LODs. Index ranges for
// different LODs therefore never overlap and grow monotonically with LOD.
func (l Layout) StateBase(lod int) int {
	base := 0
	for f := 0; f < lod; f++ {
		base += l.BlockCount(f)
	}
	return base
}

// StateIndex returns the flat state-buffer index for a block.
func (l Layout) StateIndex(lod, bx, by int) int {
	return l.StateBase(lod) + by*l.BlocksPerSide(lod) + bx
}

// StateSlots returns the total state-buffer length across all LODs.
func (l Layout) StateSlots() int {
	return l.StateBase(l.MaxLOD + 1)
}

// NodesPerSide returns the node-grid side length (doubled pixel resolution
// plus the closing row/column).
func (l Layout) NodesPerSide() int {
	return 2*l.Padded + 1
}

// NodeInBounds reports whether a node coordinate lies on the grid.
func (l Layout) NodeInBounds(nx, ny int) bool {
	n := l.NodesPerSide()
	return nx >= 0 && nx < n && ny >= 0 && ny < n
}

// CacheIndex returns the dense row-major position-cache index for a node.
func (l Layout) CacheIndex(nx, ny int) int {
	return ny*l.NodesPerSide() + nx
}

// CacheSlots returns the position-cache length.
func (l Layout) CacheSlots() int {
	n := l.NodesPerSide()
	return n * n
}

// VertexIndex returns the vertex-buffer index for a node. The buffer is
// partitioned into two interleaved addressing spaces by coordinate parity:
// even/even nodes (integer pixel corners) occupy [0, (P+1)²), and the
// remaining edge/center nodes follow in row-major order of the residual set.
// The index is a pure function of the coordinate, so a node shared between
// adjacent blocks resolves to the identical slot no matter which block
// materializes it.
func (l Layout) VertexIndex(nx, ny int) int {
	p := l.Padded
	if nx&1 == 0 && ny&1 == 0 {
		return (ny/2)*(p+1) + nx/2
	}
	cornerSpace := (p + 1) * (p + 1)
	// Rows before ny: odd rows hold all 2P+1 nodes, even rows hold the P
	// odd-column nodes.
	oddRows := ny / 2
	evenRows := ny - oddRows
	offset := oddRows*(2*p+1) + evenRows*p
	if ny&1 == 1 {
		offset += nx
	} else {
		offset += nx / 2
	}
	return cornerSpace + offset
}

// VertexSlots returns the vertex-buffer length. The two parity spaces
// together cover every node exactly once.
func (l Layout) VertexSlots() int {
	return l.CacheSlots()
}

// NodeSpacing returns the node-grid step between adjacent nodes of a block's
// 3×3 local grid at the given LOD.
func (l Layout) NodeSpacing(lod int) int {
	return 1 << lod
}

// BlockNode returns the node coordinate of local grid point (ix, iy) ∈
// {0,1,2}² of a block. (1,1) is the block center.
func (l Layout) BlockNode(lod, bx, by, ix, iy int) (nx, ny int) {
	s := l.NodeSpacing(lod)
	return 2*s*bx + s*ix, 2*s*by + s*iy
}

// Child returns the block coordinate of a child at LOD-1 for the given
// offset ∈ {0,1}².
func Child(bx, by, ox, oy int) (cx, cy int) {
	return 2*bx + ox, 2*by + oy
}
