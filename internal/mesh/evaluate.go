package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/irfansharif/relief/internal/grid"
)

// Bottom-up pass: per-block simplification error, mean distance and
// disocclusion flag, aggregated from finer children. Runs LOD ascending; each
// level reads the already-finalized level below it.

// evaluateBlock is the pass-1 unit of work for one block coordinate.
// Out-of-bounds coordinates (over-padded dispatch grids) are skipped at
// entry.
func (f *frame) evaluateBlock(lod, bx, by int) {
	if !f.layout.InBounds(lod, bx, by) {
		return
	}

	var p [3][3]mgl32.Vec3
	if lod == 0 {
		// Finest level: reconstruct the 9 node positions from the depth map
		// and fill the cache. Adjacent blocks recompute shared seam nodes to
		// identical values, so the overlapping writes are benign.
		for iy := 0; iy <= 2; iy++ {
			for ix := 0; ix <= 2; ix++ {
				nx, ny := f.layout.BlockNode(lod, bx, by, ix, iy)
				pos := f.recon.nodePosition(nx, ny)
				f.out.Positions[f.layout.CacheIndex(nx, ny)] = pos
				p[ix][iy] = pos
			}
		}
	} else {
		for iy := 0; iy <= 2; iy++ {
			for ix := 0; ix <= 2; ix++ {
				nx, ny := f.layout.BlockNode(lod, bx, by, ix, iy)
				p[ix][iy] = f.out.Positions[f.layout.CacheIndex(nx, ny)]
			}
		}
	}

	err := localError(p)
	rubber := false
	if f.cfg.Disocclusion == DisocclusionRubberSheet {
		rubber = f.anyCandidateRubberSheet(p)
	}

	st := State{Error: err, RubberSheet: rubber}
	if lod == 0 {
		// The finest level cannot simplify further; always write-eligible.
		st.Status = StatusWrite
		var sum float32
		for iy := 0; iy <= 2; iy++ {
			for ix := 0; ix <= 2; ix++ {
				sum += p[ix][iy].Len()
			}
		}
		st.MeanDistance = sum / 9
	} else {
		var meanSum float32
		for _, c := range [4][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
			cx, cy := grid.Child(bx, by, c[0], c[1])
			cs := f.out.States[f.layout.StateIndex(lod-1, cx, cy)]
			if cs.Error > st.Error {
				st.Error = cs.Error
			}
			st.RubberSheet = st.RubberSheet || cs.RubberSheet
			meanSum += cs.MeanDistance
		}
		st.MeanDistance = meanSum / 4
		if f.collapsible(st) {
			st.Status = StatusWrite
		} else {
			st.Status = StatusRecurse
		}
	}

	f.out.States[f.layout.StateIndex(lod, bx, by)] = st
}

// collapsible is the distance-adaptive threshold test: the block may stand in
// for its subtree when it carries no disocclusion bridge and its error stays
// below K times its mean distance.
func (f *frame) collapsible(st State) bool {
	return !st.RubberSheet && st.Error < f.cfg.K*st.MeanDistance
}

// localError is the geometric cost of collapsing the block's midpoints: the
// max, over the 4 outer edges and the 2 diagonals, of the distance between
// the node pair's midpoint and the actual node lying halfway between them.
func localError(p [3][3]mgl32.Vec3) float32 {
	pairs := [6][3][2]int{
		{{0, 0}, {2, 0}, {1, 0}}, // north edge
		{{0, 2}, {2, 2}, {1, 2}}, // south edge
		{{0, 0}, {0, 2}, {0, 1}}, // west edge
		{{2, 0}, {2, 2}, {2, 1}}, // east edge
		{{0, 0}, {2, 2}, {1, 1}}, // diagonal
		{{2, 0}, {0, 2}, {1, 1}}, // diagonal
	}

	var worst float32
	for _, pr := range pairs {
		a := p[pr[0][0]][pr[0][1]]
		b := p[pr[1][0]][pr[1][1]]
		m := p[pr[2][0]][pr[2][1]]
		d := a.Add(b).Mul(0.5).Sub(m).Len()
		if d > worst {
			worst = d
		}
	}
	return worst
}

// anyCandidateRubberSheet runs the rubber-sheet classifier over the block's 4
// candidate triangles (the center fan toward the compass edges).
func (f *frame) anyCandidateRubberSheet(p [3][3]mgl32.Vec3) bool {
	c := p[1][1]
	candidates := [4][2]mgl32.Vec3{
		{p[0][0], p[2][0]}, // north
		{p[2][0], p[2][2]}, // east
		{p[2][2], p[0][2]}, // south
		{p[0][2], p[0][0]}, // west
	}
	for _, cand := range candidates {
		if isRubberSheet(c, cand[0], cand[1], f.cfg.OrthoThreshold, f.cfg.TriSizeThreshold) {
			return true
		}
	}
	return false
}
