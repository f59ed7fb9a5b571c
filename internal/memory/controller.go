// Package memory provides GPU memory management for per-frame mesh updates.
//
// The mesh controller owns a single indexed mesh (interleaved VBO + EBO under
// one VAO) that is re-uploaded whenever the simplifier produces a new frame.
// Buffers grow geometrically and are never shrunk, so steady-state frames hit
// glBufferSubData only.
package memory

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
)

var memoryLogger *log.Logger = log.New(io.Discard, "", 0)

func init() {
	if os.Getenv("RELIEF_DEBUG_MEMORY") == "1" {
		memoryLogger = log.New(os.Stdout, "[memory] ", log.Ltime|log.Lmsgprefix)
	}
}

const (
	// Growth configuration. When an upload exceeds the current capacity the
	// buffer is re-specified at the required size times the headroom factor,
	// so a slowly growing mesh doesn't re-specify every frame.
	growthHeadroom = 1.5

	// Initial capacities, in elements. Sized for a modest first frame; the
	// first upload of a large mesh grows immediately.
	initialVertexFloats = 64 * 1024
	initialIndexCount   = 64 * 1024

	// Interleaved layout: position (vec3) + color (vec4).
	floatsPerVertex = 7
	vertexStride    = floatsPerVertex * 4
)

// MeshController manages the GPU storage for the viewer's single mesh.
type MeshController struct {
	vao, vbo, ebo uint32

	vboCapacity int // floats
	eboCapacity int // indices
	indexCount  int32

	stats Stats
}

// Stats tracks performance metrics for the mesh controller.
type Stats struct {
	TotalVertices    int
	TotalTriangles   int
	TotalGPUBytes    int64
	GrowthEvents     int
	LastUploadTimeUs float64
}

// NewMeshController creates the GL objects and configures the vertex layout.
// Requires a current GL context.
func NewMeshController() *MeshController {
	mc := &MeshController{
		vboCapacity: initialVertexFloats,
		eboCapacity: initialIndexCount,
	}

	gl.GenVertexArrays(1, &mc.vao)
	gl.GenBuffers(1, &mc.vbo)
	gl.GenBuffers(1, &mc.ebo)

	gl.BindVertexArray(mc.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, mc.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, mc.vboCapacity*4, nil, gl.DYNAMIC_DRAW)

	// - Attribute 0: position (vec3)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, vertexStride, gl.PtrOffset(0))
	// - Attribute 1: color (vec4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 4, gl.FLOAT, false, vertexStride, gl.PtrOffset(12))

	// The EBO binding is part of VAO state.
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, mc.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, mc.eboCapacity*4, nil, gl.DYNAMIC_DRAW)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)

	return mc
}

// Upload replaces the mesh contents with the given interleaved vertex data and
// triangle indices. Vertices must be a multiple of 7 floats (x,y,z,r,g,b,a)
// and indices a multiple of 3.
func (mc *MeshController) Upload(vertices []float32, indices []uint32) error {
	if len(vertices)%floatsPerVertex != 0 {
		return fmt.Errorf("vertex data must be a multiple of %d floats (x,y,z,r,g,b,a), got %d", floatsPerVertex, len(vertices))
	}
	if len(indices)%3 != 0 {
		return fmt.Errorf("index data must be a multiple of 3, got %d", len(indices))
	}

	startTime := time.Now()

	gl.BindBuffer(gl.ARRAY_BUFFER, mc.vbo)
	if len(vertices) > mc.vboCapacity {
		mc.vboCapacity = int(float64(len(vertices)) * growthHeadroom)
		gl.BufferData(gl.ARRAY_BUFFER, mc.vboCapacity*4, nil, gl.DYNAMIC_DRAW)
		mc.stats.GrowthEvents++
		memoryLogger.Printf("grew VBO to %s floats (%s)", formatNumber(int64(mc.vboCapacity)), formatNumber(int64(mc.vboCapacity)*4))
	}
	if len(vertices) > 0 {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, gl.Ptr(vertices))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	// Bind through the VAO so the grown EBO stays attached to it.
	gl.BindVertexArray(mc.vao)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, mc.ebo)
	if len(indices) > mc.eboCapacity {
		mc.eboCapacity = int(float64(len(indices)) * growthHeadroom)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, mc.eboCapacity*4, nil, gl.DYNAMIC_DRAW)
		mc.stats.GrowthEvents++
		memoryLogger.Printf("grew EBO to %s indices (%s)", formatNumber(int64(mc.eboCapacity)), formatNumber(int64(mc.eboCapacity)*4))
	}
	if len(indices) > 0 {
		gl.BufferSubData(gl.ELEMENT_ARRAY_BUFFER, 0, len(indices)*4, gl.Ptr(indices))
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)

	mc.indexCount = int32(len(indices))
	mc.stats.TotalVertices = len(vertices) / floatsPerVertex
	mc.stats.TotalTriangles = len(indices) / 3
	mc.stats.TotalGPUBytes = int64(mc.vboCapacity+mc.eboCapacity) * 4
	mc.stats.LastUploadTimeUs = float64(time.Since(startTime).Microseconds())
	return nil
}

// Draw renders the current mesh with a single indexed draw call.
func (mc *MeshController) Draw() {
	if mc.indexCount == 0 {
		return
	}
	gl.BindVertexArray(mc.vao)
	gl.DrawElements(gl.TRIANGLES, mc.indexCount, gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.BindVertexArray(0)
}

// Cleanup releases all OpenGL resources.
func (mc *MeshController) Cleanup() {
	if mc.vao != 0 {
		gl.DeleteVertexArrays(1, &mc.vao)
		mc.vao = 0
	}
	if mc.vbo != 0 {
		gl.DeleteBuffers(1, &mc.vbo)
		mc.vbo = 0
	}
	if mc.ebo != 0 {
		gl.DeleteBuffers(1, &mc.ebo)
		mc.ebo = 0
	}
}

// Stats returns current memory statistics.
func (mc *MeshController) Stats() Stats {
	return mc.stats
}

// PrintStats outputs mesh memory statistics.
func (mc *MeshController) PrintStats() {
	stats := mc.Stats()
	memoryLogger.Printf("%s triangles, %s vertices, %s GPU (%d growth events, %.2fµs last upload)",
		formatNumber(int64(stats.TotalTriangles)),
		formatNumber(int64(stats.TotalVertices)),
		formatNumber(stats.TotalGPUBytes),
		stats.GrowthEvents,
		stats.LastUploadTimeUs,
	)
}

// formatNumber formats large numbers with K/M suffixes for readability.
func formatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000.0)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000.0)
}
