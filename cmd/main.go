package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/irfansharif/relief/internal/app"
	"github.com/irfansharif/relief/internal/depth"
	"github.com/irfansharif/relief/internal/dispatch"
	"github.com/irfansharif/relief/internal/memory"
	"github.com/irfansharif/relief/internal/mesh"
	"github.com/irfansharif/relief/internal/render"
)

const logFlags = log.Ltime | log.Lshortfile

var runtimeLogger *log.Logger = log.New(io.Discard, "", 0)

var (
	inputPath = flag.String("input", "", "depth image to mesh (PNG/TIFF, 8- or 16-bit gray); synthetic scenes are used when empty")
	nearFlag  = flag.Float64("near", 0.5, "metric distance encoded by sample value 0")
	farFlag   = flag.Float64("far", 20, "metric distance encoded by sample value 1")
	hfovFlag  = flag.Float64("hfov", 90, "horizontal field of view, degrees")
	vfovFlag  = flag.Float64("vfov", 90, "vertical field of view, degrees")
	kFlag     = flag.Float64("k", mesh.DefaultConfig().K, "error threshold as a fraction of mean block distance")
	workers   = flag.Int("workers", 0, "worker pool size (0 = GOMAXPROCS)")
)

func init() {
	// OpenGL contexts are tied to specific OS threads - let's pin to just one.
	runtime.LockOSThread()
	log.SetFlags(logFlags)

	if os.Getenv("RELIEF_DEBUG_RUNTIME") == "1" {
		runtimeLogger = log.New(os.Stdout, "[runtime] ", log.Ltime|log.Lmsgprefix)
	}
}

func makeTitle(fps float64, avgFrameTime float64, meshStats mesh.Stats, renderStats render.Stats, memStats memory.Stats, cfg mesh.Config) string {
	return fmt.Sprintf("Relief (%.1f FPS, %.2fms/frame, %d triangles, %d write blocks, %.2fms/remesh, %.2fms/prepare, %.2fµs/draw, %.1fMiB GPU, k=%.4f, %s, %s)",
		fps,
		avgFrameTime,
		memStats.TotalTriangles,
		meshStats.WriteBlocks,
		meshStats.LastRemeshTimeMs,
		renderStats.LastPrepareTimeMs,
		renderStats.LastDrawTimeUs,
		float64(memStats.TotalGPUBytes)/(1024.0*1024.0),
		cfg.K,
		cfg.Projection,
		cfg.Disocclusion,
	)
}

// scenes returns the depth sources the viewer cycles through: either the
// single file named by -input, or the built-in synthetic set.
func scenes() []depth.Source {
	near, far := float32(*nearFlag), float32(*farFlag)
	hfov, vfov := *hfovFlag, *vfovFlag

	if *inputPath != "" {
		m, err := depth.LoadFile(*inputPath, depth.Metadata{
			HFOVDeg: hfov, VFOVDeg: vfov, Near: near, Far: far,
		})
		if err != nil {
			log.Fatalf("Failed to load %s: %v", *inputPath, err)
		}
		return []depth.Source{m}
	}

	return []depth.Source{
		depth.SphereOverPlane(512, 512, hfov, vfov, near, far, (near+far)/2, (near+far)/3, (far-near)/8),
		depth.StepEdge(512, 512, hfov, vfov, near, far, near*4, far*0.75, 256),
		depth.FlatPlane(512, 512, hfov, vfov, near, far, (near+far)/2),
	}
}

func main() {
	flag.Parse()

	if err := glfw.Init(); err != nil {
		log.Fatalf("Failed to initialize GLFW: %v", err)
	}
	defer glfw.Terminate()

	// Configure GLFW window hints - use OpenGL 4.1.
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)

	window, err := glfw.CreateWindow(
		1280, // width
		960,  // height
		"Relief",
		nil, nil,
	)
	if err != nil {
		log.Fatalf("Failed to create window: %v", err)
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		log.Fatalf("Failed to initialize OpenGL: %v", err)
	}

	pool := dispatch.NewPool(*workers)
	defer pool.Close()

	sources := scenes()
	cfg := mesh.DefaultConfig()
	cfg.K = float32(*kFlag)

	cw, ch := window.GetFramebufferSize()
	application := app.NewApp(
		window,
		pool,
		sources[0],
		cfg,
		app.NewView(cw, ch, mgl32.Vec3{}, 1), // retargeted by NewApp from the source's range
	)
	defer application.MemoryController.Cleanup()

	// Initialize event handlers.
	eventHandlers := NewEventHandlers(application, sources)

	gl.Enable(gl.DEPTH_TEST)

	frameCount, frameTimeSum := 0, 0.0
	lastFPSUpdate := time.Now()

	// Main loop.
	for !application.Window.ShouldClose() {
		frameStart := time.Now()

		eventHandlers.handleContinuousAdjustment()
		application.RemeshIfDirty()
		application.UpdateRendererView()

		w, h := application.Window.GetFramebufferSize()
		gl.Viewport(0, 0, int32(w), int32(h))
		gl.ClearColor(0.08, 0.08, 0.1, 1)
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

		if application.Wireframe {
			application.Renderer.DrawWireframe()
		} else {
			application.Renderer.Draw()
		}
		application.Window.SwapBuffers()
		glfw.PollEvents()

		frameTime := time.Since(frameStart).Seconds() * 1000.0 // ms
		frameTimeSum += frameTime

		frameCount++
		now := time.Now()
		if now.Sub(lastFPSUpdate) >= time.Second {
			fps := float64(frameCount) / now.Sub(lastFPSUpdate).Seconds()
			avgFrameTime := frameTimeSum / float64(frameCount)
			frameCount, frameTimeSum = 0, 0.0
			lastFPSUpdate = now

			meshStats := application.Mesher.Stats()
			memStats := application.MemoryController.Stats()
			renderStats := application.Renderer.Stats()

			application.Window.SetTitle(
				makeTitle(fps, avgFrameTime, meshStats, renderStats, memStats, application.Config),
			)

			runtimeLogger.Println("=== Performance statistics ===")
			runtimeLogger.Printf("Frame rate:     %.1f FPS (%.2f ms/frame)", fps, avgFrameTime)
			runtimeLogger.Printf("Mesh:           %d triangles, %d write blocks, max LOD %d, %.2f ms (last remesh)", meshStats.Triangles, meshStats.WriteBlocks, meshStats.MaxLOD, meshStats.LastRemeshTimeMs)
			runtimeLogger.Printf("Upload:         %d compacted vertices, %.2f ms (last prepare), %d growth events", renderStats.CompactedVertices, renderStats.LastPrepareTimeMs, memStats.GrowthEvents)
			runtimeLogger.Printf("GPU memory:     %.2f MiB", float64(memStats.TotalGPUBytes)/(1024.0*1024.0))
			runtimeLogger.Printf("Render time:    %.2f µs (last draw)", renderStats.LastDrawTimeUs)
			runtimeLogger.Println("==============================")

			application.MemoryController.PrintStats()
		}
	}
}
