package mesh

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/irfansharif/relief/internal/depth"
	"github.com/irfansharif/relief/internal/dispatch"
	"github.com/irfansharif/relief/internal/grid"
)

func newTestPool(t *testing.T) *dispatch.Pool {
	t.Helper()
	p := dispatch.NewPool(4)
	t.Cleanup(p.Close)
	return p
}

// uvArea sums the UV-space area of all output triangles. Crack-free output
// tiles the image without overlap, so full coverage sums to 1.
func uvArea(b *Buffers) float64 {
	var sum float64
	for i := 0; i+2 < len(b.Triangles); i += 3 {
		a := b.VertexUV[b.Triangles[i]]
		c := b.VertexUV[b.Triangles[i+1]]
		d := b.VertexUV[b.Triangles[i+2]]
		cross := float64(c.X()-a.X())*float64(d.Y()-a.Y()) - float64(c.Y()-a.Y())*float64(d.X()-a.X())
		if cross < 0 {
			cross = -cross
		}
		sum += cross / 2
	}
	return sum
}

// references reports whether any output triangle uses the vertex index.
func references(b *Buffers, idx uint32) bool {
	for _, v := range b.Triangles {
		if v == idx {
			return true
		}
	}
	return false
}

func TestLOD0AlwaysWriteEligible(t *testing.T) {
	pool := newTestPool(t)
	m := NewMesher(pool)

	src := depth.SphereOverPlane(16, 16, 90, 90, 0.5, 20, 10, 8, 2)
	out := m.Remesh(src, DefaultConfig())

	// Every LOD-0 block is Write unless claimed by an ancestor; Recurse never
	// appears at the finest level.
	side := out.Layout.BlocksPerSide(0)
	for by := 0; by < side; by++ {
		for bx := 0; bx < side; bx++ {
			require.NotEqual(t, StatusRecurse, out.StateAt(0, bx, by).Status,
				"block (%d,%d)", bx, by)
		}
	}
}

func TestErrorAndMeanDistanceAggregation(t *testing.T) {
	pool := newTestPool(t)
	m := NewMesher(pool)

	src := depth.SphereOverPlane(32, 32, 90, 90, 0.5, 20, 10, 8, 2)
	out := m.Remesh(src, DefaultConfig())

	for lod := 1; lod <= out.Layout.MaxLOD; lod++ {
		side := out.Layout.BlocksPerSide(lod)
		for by := 0; by < side; by++ {
			for bx := 0; bx < side; bx++ {
				st := out.StateAt(lod, bx, by)
				var meanSum float32
				for _, c := range [4][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
					cx, cy := grid.Child(bx, by, c[0], c[1])
					cs := out.StateAt(lod-1, cx, cy)
					require.GreaterOrEqual(t, st.Error, cs.Error,
						"error at lod %d block (%d,%d) below child's", lod, bx, by)
					if cs.RubberSheet {
						require.True(t, st.RubberSheet, "rubber-sheet flag not propagated upward")
					}
					meanSum += cs.MeanDistance
				}
				require.InDelta(t, float64(meanSum/4), float64(st.MeanDistance), 1e-4,
					"meanDistance at lod %d block (%d,%d)", lod, bx, by)
			}
		}
	}
}

func TestAcceptanceMonotonicInK(t *testing.T) {
	pool := newTestPool(t)
	m := NewMesher(pool)

	src := depth.SphereOverPlane(32, 32, 90, 90, 0.5, 20, 10, 8, 2)
	cfg := DefaultConfig()
	cfg.Disocclusion = DisocclusionOff

	eligible := func(out *Buffers, k float32) map[int]bool {
		set := make(map[int]bool)
		for lod := 1; lod <= out.Layout.MaxLOD; lod++ {
			side := out.Layout.BlocksPerSide(lod)
			for by := 0; by < side; by++ {
				for bx := 0; bx < side; bx++ {
					st := out.StateAt(lod, bx, by)
					if !st.RubberSheet && st.Error < k*st.MeanDistance {
						set[out.Layout.StateIndex(lod, bx, by)] = true
					}
				}
			}
		}
		return set
	}

	cfg.K = 0.02
	small := eligible(m.Remesh(src, cfg), cfg.K)

	cfg.K = 0.2
	large := eligible(m.Remesh(src, cfg), cfg.K)

	// Raising k only ever moves blocks from Recurse to Write.
	for idx := range small {
		require.True(t, large[idx], "block accepted at k=0.02 but rejected at k=0.2")
	}
	require.GreaterOrEqual(t, len(large), len(small))
}

func TestFlatPlaneCollapsesToTwoTriangles(t *testing.T) {
	pool := newTestPool(t)
	m := NewMesher(pool)

	// Flat plane at constant distance, k tolerant enough to accept the top
	// block: the whole 64×64 extent collapses into two triangles.
	src := depth.FlatPlane(64, 64, 90, 90, 0.5, 20, 5)
	cfg := DefaultConfig()
	cfg.K = 10
	cfg.Disocclusion = DisocclusionOff
	cfg.RemoveBackground = false

	out := m.Remesh(src, cfg)
	require.Equal(t, 2, out.TriangleCount())
	require.Equal(t, 1, m.Stats().WriteBlocks)
	require.InDelta(t, 1.0, uvArea(out), 1e-6, "the two triangles must cover the full extent")

	// Only the four extreme corner nodes are referenced.
	n := 2 * out.Layout.Padded
	corners := map[uint32]bool{
		uint32(out.Layout.VertexIndex(0, 0)): true,
		uint32(out.Layout.VertexIndex(n, 0)): true,
		uint32(out.Layout.VertexIndex(0, n)): true,
		uint32(out.Layout.VertexIndex(n, n)): true,
	}
	for _, v := range out.Triangles {
		require.True(t, corners[v], "unexpected vertex index %d in collapsed output", v)
	}
}

func TestRubberSheetFlagsClearWhenDisocclusionOff(t *testing.T) {
	pool := newTestPool(t)
	m := NewMesher(pool)

	// A sharp step produces sideways bridge geometry, but with disocclusion
	// handling off no block may carry the flag regardless of shape.
	src := depth.StepEdge(16, 16, 90, 90, 0.5, 20, 2, 15, 8)
	cfg := DefaultConfig()
	cfg.Disocclusion = DisocclusionOff

	out := m.Remesh(src, cfg)
	for lod := 0; lod <= out.Layout.MaxLOD; lod++ {
		side := out.Layout.BlocksPerSide(lod)
		for by := 0; by < side; by++ {
			for bx := 0; bx < side; bx++ {
				require.False(t, out.StateAt(lod, bx, by).RubberSheet)
			}
		}
	}
}

func TestRubberSheetRemovalDropsBridges(t *testing.T) {
	pool := newTestPool(t)
	m := NewMesher(pool)

	src := depth.StepEdge(16, 16, 90, 90, 0.5, 20, 2, 15, 8)
	cfg := DefaultConfig()
	cfg.RemoveBackground = false

	cfg.Disocclusion = DisocclusionOff
	withBridges := m.Remesh(src, cfg).TriangleCount()

	cfg.Disocclusion = DisocclusionRubberSheet
	withoutBridges := m.Remesh(src, cfg).TriangleCount()

	require.Less(t, withoutBridges, withBridges,
		"rubber-sheet removal should drop the bridge triangles along the step")
}

func TestBackgroundRemovalToggle(t *testing.T) {
	pool := newTestPool(t)
	m := NewMesher(pool)

	// Every sample at the far range: all vertices classify as background.
	src := depth.FlatPlane(8, 8, 90, 90, 0.5, 20, 20)
	cfg := DefaultConfig()
	cfg.K = 5
	cfg.Disocclusion = DisocclusionOff

	cfg.RemoveBackground = false
	require.Greater(t, m.Remesh(src, cfg).TriangleCount(), 0)

	cfg.RemoveBackground = true
	require.Equal(t, 0, m.Remesh(src, cfg).TriangleCount())
}

func TestFarPixelPunchesCleanHole(t *testing.T) {
	pool := newTestPool(t)
	m := NewMesher(pool)

	// A single far-range pixel in an otherwise near-constant plane. With
	// background removal on, the pixel's center node must vanish from the
	// output and the rest of the image must stay covered without cracks.
	src := depth.FlatPlane(16, 16, 90, 90, 0.5, 20, 2)
	src.Set(5, 5, 1) // encoded far

	cfg := DefaultConfig()
	cfg.K = 0.05
	cfg.Disocclusion = DisocclusionOff
	cfg.RemoveBackground = true

	out := m.Remesh(src, cfg)
	require.Greater(t, out.TriangleCount(), 0)

	centerIdx := uint32(out.Layout.VertexIndex(2*5+1, 2*5+1))
	require.False(t, references(out, centerIdx),
		"no triangle may reference the far pixel's center node")

	// Coverage equals the full extent minus exactly the removed pixel.
	pixelArea := 1.0 / (16.0 * 16.0)
	require.InDelta(t, 1.0-pixelArea, uvArea(out), 1e-6)
}

func TestAccumulatedErrorPropagates(t *testing.T) {
	pool := newTestPool(t)
	m := NewMesher(pool)

	src := depth.FlatPlane(16, 16, 90, 90, 0.5, 20, 5)
	cfg := DefaultConfig()
	cfg.K = 10
	cfg.Disocclusion = DisocclusionOff
	cfg.RemoveBackground = false

	out := m.Remesh(src, cfg)
	top := out.StateAt(out.Layout.MaxLOD, 0, 0)
	require.Equal(t, StatusWrite, top.Status)

	// Every descendant is disabled and carries the top block's error as its
	// accumulated error.
	for lod := 0; lod < out.Layout.MaxLOD; lod++ {
		side := out.Layout.BlocksPerSide(lod)
		for by := 0; by < side; by++ {
			for bx := 0; bx < side; bx++ {
				idx := out.Layout.StateIndex(lod, bx, by)
				require.Equal(t, StatusDisabled, out.States[idx].Status)
				require.Equal(t, top.Error, out.AccumError[idx])
			}
		}
	}
}

func TestRemeshReusesBuffersAcrossFrames(t *testing.T) {
	pool := newTestPool(t)
	m := NewMesher(pool)

	src := depth.SphereOverPlane(16, 16, 90, 90, 0.5, 20, 10, 8, 2)
	first := m.Remesh(src, DefaultConfig())
	second := m.Remesh(src, DefaultConfig())
	require.Same(t, first, second, "same-resolution frames reuse the buffers")
	require.Greater(t, second.TriangleCount(), 0)
}

func BenchmarkRemeshSphere(b *testing.B) {
	pool := dispatch.NewPool(0)
	defer pool.Close()
	m := NewMesher(pool)

	src := depth.SphereOverPlane(256, 256, 90, 90, 0.5, 20, 10, 8, 2)
	cfg := DefaultConfig()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Remesh(src, cfg)
	}
}
