// Package render handles the visual presentation of simplified depth meshes.
//
// It takes the triangle output of the mesh package and:
// 1. Compacts the sparse vertex table down to the referenced vertices.
// 2. Tints vertices with a palette ramp and uploads them to the GPU.
// 3. Renders the indexed mesh through OpenGL with a camera MVP matrix.
package render

import (
	"image/color"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/irfansharif/relief/internal/memory"
	"github.com/irfansharif/relief/internal/mesh"
	"github.com/irfansharif/relief/internal/palette"
)

type Renderer struct {
	w, h int
	mvp  mgl32.Mat4

	memController *memory.MeshController
	shaderManager *ShaderManager
	stats         Stats

	// Scratch buffers reused across frames.
	vertexScratch []float32
	indexScratch  []uint32
	remap         []int32
}

// Stats tracks rendering performance metrics.
type Stats struct {
	LastPrepareTimeMs float64 // time spent in last Prepare() call in milliseconds
	LastDrawTimeUs    float64 // time spent in last Draw() call in microseconds
	CompactedVertices int     // vertices referenced by the last frame's triangles
}

func NewRenderer(memController *memory.MeshController) *Renderer {
	return &Renderer{
		mvp:           mgl32.Ident4(),
		shaderManager: NewShaderManager(),
		memController: memController,
	}
}

// SetView updates the viewport size and camera matrix used by Draw.
func (r *Renderer) SetView(w, h int, mvp mgl32.Mat4) {
	r.w, r.h = w, h
	r.mvp = mvp
}

// Prepare compacts and tints the mesh output and uploads it to the GPU. The
// vertex table in out is sparse (slots exist for every possible grid node), so
// only vertices referenced by a triangle are uploaded, with indices remapped.
func (r *Renderer) Prepare(out *mesh.Buffers, near, far float32, mode palette.Mode) error {
	startTime := time.Now()

	if cap(r.remap) < len(out.VertexPos) {
		r.remap = make([]int32, len(out.VertexPos))
	}
	remap := r.remap[:len(out.VertexPos)]
	for i := range remap {
		remap[i] = -1
	}

	r.vertexScratch = r.vertexScratch[:0]
	r.indexScratch = r.indexScratch[:0]

	// Height normalization bounds for the height ramp.
	minY, maxY := float32(0), float32(0)
	if mode == palette.ModeHeight {
		first := true
		for _, vi := range out.Triangles {
			y := out.VertexPos[vi].Y()
			if first || y < minY {
				minY = y
			}
			if first || y > maxY {
				maxY = y
			}
			first = false
		}
		if maxY <= minY {
			maxY = minY + 1
		}
	}

	next := int32(0)
	for _, vi := range out.Triangles {
		if remap[vi] < 0 {
			remap[vi] = next
			next++

			pos := out.VertexPos[vi]
			c := r.tint(pos, near, far, minY, maxY, mode)
			r.vertexScratch = append(r.vertexScratch,
				pos.X(), pos.Y(), pos.Z(), // position
				float32(c.R)/255.0, float32(c.G)/255.0,
				float32(c.B)/255.0, float32(c.A)/255.0, // color
			)
		}
		r.indexScratch = append(r.indexScratch, uint32(remap[vi]))
	}

	if err := r.memController.Upload(r.vertexScratch, r.indexScratch); err != nil {
		return err
	}

	r.stats.CompactedVertices = int(next)
	r.stats.LastPrepareTimeMs = float64(time.Since(startTime).Microseconds()) / 1000.0
	return nil
}

// tint derives a vertex color from its position.
func (r *Renderer) tint(pos mgl32.Vec3, near, far, minY, maxY float32, mode palette.Mode) color.RGBA {
	switch mode {
	case palette.ModeHeight:
		t := float64((pos.Y() - minY) / (maxY - minY))
		return palette.HeightRamp(t)
	case palette.ModeFlat:
		return palette.Flat()
	default:
		span := far - near
		if span <= 0 {
			span = 1
		}
		t := float64((pos.Len() - near) / span)
		return palette.DepthRamp(t)
	}
}

func (r *Renderer) Draw() {
	startTime := time.Now()

	// Set shader uniforms.
	r.shaderManager.SetMVP(r.mvp)

	// Memory controller handles the draw.
	r.memController.Draw()

	// Record draw time.
	r.stats.LastDrawTimeUs = float64(time.Since(startTime).Microseconds())
}

// DrawWireframe renders the current mesh in line polygon mode, for inspecting
// the simplification structure.
func (r *Renderer) DrawWireframe() {
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	r.Draw()
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
}

// Stats returns the current performance statistics
func (r *Renderer) Stats() Stats {
	return r.stats
}
