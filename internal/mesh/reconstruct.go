package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/irfansharif/relief/internal/depth"
	"github.com/irfansharif/relief/internal/project"
)

// reconstructor turns depth samples into view-space node positions. Every
// method is a pure function of the depth source, so recomputing a node
// without the cache reproduces the cached value exactly; the LOD-0 pass uses
// that to fill the position cache with benign duplicate writes along block
// seams.
type reconstructor struct {
	src        depth.Source
	w, h       int
	hfov, vfov float64
	near, far  float32
}

func newReconstructor(src depth.Source) reconstructor {
	w, h := src.Resolution()
	hfov, vfov := src.FOV()
	near, far := src.Range()
	return reconstructor{src: src, w: w, h: h, hfov: hfov, vfov: vfov, near: near, far: far}
}

// nodePosition reconstructs the view-space position of a node-grid
// coordinate, branching by coordinate parity:
//   - both odd: the node sits at a pixel center; project that pixel's sample
//     directly.
//   - both even: the node sits at a corner shared by up to 4 pixels; average
//     the positions independently reconstructed from the diagonal-neighbor
//     pixels, excluding out-of-bounds ones. With no valid neighbor the
//     distance defaults to 0 ("no data").
//   - mixed parity: the node sits at a pixel-edge center; average the two
//     adjacent corner reconstructions along the odd axis.
func (r reconstructor) nodePosition(nx, ny int) mgl32.Vec3 {
	xOdd, yOdd := nx&1 == 1, ny&1 == 1
	switch {
	case xOdd && yOdd:
		return r.pixelPosition((nx-1)/2, (ny-1)/2)
	case !xOdd && !yOdd:
		return r.cornerPosition(nx, ny)
	case xOdd:
		a := r.cornerPosition(nx-1, ny)
		b := r.cornerPosition(nx+1, ny)
		return a.Add(b).Mul(0.5)
	default:
		a := r.cornerPosition(nx, ny-1)
		b := r.cornerPosition(nx, ny+1)
		return a.Add(b).Mul(0.5)
	}
}

// cornerPosition averages the reconstructions of the up-to-4 pixels sharing
// an even/even corner node.
func (r reconstructor) cornerPosition(nx, ny int) mgl32.Vec3 {
	var sum mgl32.Vec3
	valid := 0
	for _, d := range [4][2]int{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}} {
		px := (nx + d[0] - 1) / 2
		py := (ny + d[1] - 1) / 2
		if px < 0 || px >= r.w || py < 0 || py >= r.h {
			continue
		}
		sum = sum.Add(r.pixelPosition(px, py))
		valid++
	}
	if valid == 0 {
		return mgl32.Vec3{}
	}
	return sum.Mul(1 / float32(valid))
}

// pixelPosition projects one pixel's decoded sample.
func (r reconstructor) pixelPosition(px, py int) mgl32.Vec3 {
	u := (float64(px) + 0.5) / float64(r.w)
	v := (float64(py) + 0.5) / float64(r.h)
	dist := project.DecodeDistance(r.src.Sample(u, v), r.near, r.far)
	return project.ViewSpace(dist, u, v, r.hfov, r.vfov)
}

// nodeUV returns the texture coordinate of a node, wrapping the horizontal
// axis modulo 1 for omnidirectional captures.
func (r reconstructor) nodeUV(nx, ny int) mgl32.Vec2 {
	u := float64(nx) / float64(2*r.w)
	v := float64(ny) / float64(2*r.h)
	if r.hfov > 180 {
		u = u - math.Floor(u)
	}
	return mgl32.Vec2{float32(u), float32(v)}
}
