package app

import (
	"log"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/irfansharif/relief/internal/depth"
	"github.com/irfansharif/relief/internal/dispatch"
	"github.com/irfansharif/relief/internal/memory"
	"github.com/irfansharif/relief/internal/mesh"
	"github.com/irfansharif/relief/internal/palette"
	"github.com/irfansharif/relief/internal/render"
)

// kAdjustFactor is the multiplicative step applied per error-threshold
// keypress.
const kAdjustFactor = 1.25

// App encapsulates the main application state and logic.
type App struct {
	Window           *glfw.Window
	Renderer         *render.Renderer
	Mesher           *mesh.Mesher
	MemoryController *memory.MeshController
	View             *View

	Source    depth.Source
	Config    mesh.Config
	Color     palette.Mode
	Wireframe bool

	dirty bool
}

// NewApp creates a new application instance.
func NewApp(window *glfw.Window, pool *dispatch.Pool, src depth.Source, cfg mesh.Config, view *View) *App {
	memController := memory.NewMeshController()
	renderer := render.NewRenderer(memController)
	app := &App{
		Window:           window,
		Renderer:         renderer,
		Mesher:           mesh.NewMesher(pool),
		MemoryController: memController,
		View:             view,
		Source:           src,
		Config:           cfg,
		Color:            palette.ModeDepth,
		dirty:            true,
	}
	app.retargetView()
	return app
}

// SetSource swaps the depth source being meshed and recenters the camera.
func (app *App) SetSource(src depth.Source) {
	app.Source = src
	app.retargetView()
	app.MarkDirty()
}

// MarkDirty schedules a remesh and re-upload on the next frame.
func (app *App) MarkDirty() {
	app.dirty = true
}

// RemeshIfDirty regenerates the mesh and uploads it when configuration or
// source changed since the last frame.
func (app *App) RemeshIfDirty() {
	if !app.dirty {
		return
	}

	out := app.Mesher.Remesh(app.Source, app.Config)
	near, far := app.Source.Range()
	if err := app.Renderer.Prepare(out, near, far, app.Color); err != nil {
		log.Fatalf("Failed to prepare renderer: %v", err)
	}
	app.dirty = false
}

// UpdateRendererView pushes the current camera and framebuffer size to the
// renderer.
func (app *App) UpdateRendererView() {
	cw, ch := app.Window.GetFramebufferSize()
	app.View.SetViewport(cw, ch)
	app.Renderer.SetView(cw, ch, app.View.Matrix())
}

// AdjustK scales the error threshold up or down one step.
func (app *App) AdjustK(up bool) {
	if up {
		app.Config.K *= kAdjustFactor
	} else {
		app.Config.K /= kAdjustFactor
	}
	app.MarkDirty()
}

// CycleProjection advances to the next output projection mode.
func (app *App) CycleProjection() {
	switch app.Config.Projection {
	case mesh.ProjectionViewSpace:
		app.Config.Projection = mesh.ProjectionMinPlane
	case mesh.ProjectionMinPlane:
		app.Config.Projection = mesh.ProjectionEquirect
	default:
		app.Config.Projection = mesh.ProjectionViewSpace
	}
	app.MarkDirty()
}

// ToggleDisocclusion flips rubber-sheet detection and removal.
func (app *App) ToggleDisocclusion() {
	if app.Config.Disocclusion == mesh.DisocclusionRubberSheet {
		app.Config.Disocclusion = mesh.DisocclusionOff
	} else {
		app.Config.Disocclusion = mesh.DisocclusionRubberSheet
	}
	app.MarkDirty()
}

// ToggleBackground flips background-triangle removal.
func (app *App) ToggleBackground() {
	app.Config.RemoveBackground = !app.Config.RemoveBackground
	app.MarkDirty()
}

// CycleColorMode advances to the next vertex tinting mode.
func (app *App) CycleColorMode() {
	for i, m := range palette.Modes {
		if m == app.Color {
			app.Color = palette.Modes[(i+1)%len(palette.Modes)]
			app.MarkDirty()
			return
		}
	}
	app.Color = palette.Modes[0]
	app.MarkDirty()
}

// ToggleWireframe flips wireframe rendering. Pure draw state, no remesh.
func (app *App) ToggleWireframe() {
	app.Wireframe = !app.Wireframe
}

// retargetView recenters the orbit on the scene: the point halfway into the
// depth range along the source camera's forward axis.
func (app *App) retargetView() {
	near, far := app.Source.Range()
	mid := (near + far) / 2
	app.View.RetargetTo(mgl32.Vec3{0, 0, -mid}, float64(far-near))
}
