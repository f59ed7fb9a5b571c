package grid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStateIndexRangesNeverOverlap(t *testing.T) {
	l := NewLayout(16)

	seen := make(map[int]bool)
	for lod := 0; lod <= l.MaxLOD; lod++ {
		side := l.BlocksPerSide(lod)
		for by := 0; by < side; by++ {
			for bx := 0; bx < side; bx++ {
				idx := l.StateIndex(lod, bx, by)
				require.False(t, seen[idx], "state index %d assigned twice (lod=%d bx=%d by=%d)", idx, lod, bx, by)
				require.GreaterOrEqual(t, idx, l.StateBase(lod))
				require.Less(t, idx, l.StateBase(lod+1))
				seen[idx] = true
			}
		}
	}
	require.Len(t, seen, l.StateSlots())
}

func TestStateBaseMonotonic(t *testing.T) {
	l := NewLayout(64)
	for lod := 0; lod <= l.MaxLOD; lod++ {
		require.Greater(t, l.StateBase(lod+1), l.StateBase(lod))
	}
	// Geometric series over the quadtree: P² + (P/2)² + ... + 1.
	require.Equal(t, 64*64+32*32+16*16+8*8+4*4+2*2+1, l.StateSlots())
}

func TestVertexIndexPartition(t *testing.T) {
	l := NewLayout(8)
	cornerSpace := (l.Padded + 1) * (l.Padded + 1)

	seen := make(map[int]bool)
	n := l.NodesPerSide()
	for ny := 0; ny < n; ny++ {
		for nx := 0; nx < n; nx++ {
			idx := l.VertexIndex(nx, ny)
			require.False(t, seen[idx], "vertex index %d assigned twice (nx=%d ny=%d)", idx, nx, ny)
			require.GreaterOrEqual(t, idx, 0)
			require.Less(t, idx, l.VertexSlots())
			if nx&1 == 0 && ny&1 == 0 {
				require.Less(t, idx, cornerSpace, "corner node (%d,%d) outside corner space", nx, ny)
			} else {
				require.GreaterOrEqual(t, idx, cornerSpace, "edge/center node (%d,%d) inside corner space", nx, ny)
			}
			seen[idx] = true
		}
	}
	require.Len(t, seen, l.VertexSlots())
}

func TestBlockNodeChildRelation(t *testing.T) {
	l := NewLayout(16)

	for lod := 1; lod <= l.MaxLOD; lod++ {
		side := l.BlocksPerSide(lod)
		for by := 0; by < side; by++ {
			for bx := 0; bx < side; bx++ {
				// A parent's corner node coincides with the matching corner of
				// the matching child, and its center with the children's shared
				// corner.
				for _, c := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
					cx, cy := Child(bx, by, c[0], c[1])
					pnx, pny := l.BlockNode(lod, bx, by, 2*c[0], 2*c[1])
					cnx, cny := l.BlockNode(lod-1, cx, cy, 2*c[0], 2*c[1])
					require.Equal(t, pnx, cnx)
					require.Equal(t, pny, cny)
				}
				centerX, centerY := l.BlockNode(lod, bx, by, 1, 1)
				cx, cy := Child(bx, by, 1, 1)
				childCornerX, childCornerY := l.BlockNode(lod-1, cx, cy, 0, 0)
				require.Equal(t, centerX, childCornerX)
				require.Equal(t, centerY, childCornerY)
			}
		}
	}
}

func TestSharedBoundaryNodesResolveIdentically(t *testing.T) {
	l := NewLayout(8)

	// East edge of block (0,0) and west edge of block (1,0) at LOD 1 are the
	// same three nodes.
	for iy := 0; iy <= 2; iy++ {
		ax, ay := l.BlockNode(1, 0, 0, 2, iy)
		bx, by := l.BlockNode(1, 1, 0, 0, iy)
		require.Equal(t, l.VertexIndex(ax, ay), l.VertexIndex(bx, by))
		require.Equal(t, l.CacheIndex(ax, ay), l.CacheIndex(bx, by))
	}
}

func TestInBounds(t *testing.T) {
	l := NewLayout(4)
	require.True(t, l.InBounds(0, 0, 0))
	require.True(t, l.InBounds(0, 3, 3))
	require.False(t, l.InBounds(0, 4, 0))
	require.False(t, l.InBounds(0, 0, -1))
	require.True(t, l.InBounds(l.MaxLOD, 0, 0))
	require.False(t, l.InBounds(l.MaxLOD, 1, 0))
	require.False(t, l.InBounds(l.MaxLOD+1, 0, 0))
}
