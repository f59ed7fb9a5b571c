package main

import (
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/irfansharif/relief/internal/app"
	"github.com/irfansharif/relief/internal/depth"
)

const repeatInterval = 125 * time.Millisecond // time between successive threshold steps when held down
const orbitSensitivity = 0.008                // radians per pixel of drag
const zoomStep = 0.12                         // fractional radius change per scroll tick

// EventHandlers manages all event handling for the application.
type EventHandlers struct {
	application *app.App

	// Depth sources the viewer cycles through with Space.
	sources     []depth.Source
	sourceIndex int

	// -/= adjust the error threshold. If held down, we do so continuously.
	kUpHeld, kDownHeld bool
	lastAdjustTime     time.Time

	// Drag/orbit state (per-gesture), captured on mouse press.
	isDragging                       bool
	dragStartMouseX, dragStartMouseY float64
	dragStartYaw, dragStartPitch     float64
}

// NewEventHandlers creates a new event handlers manager.
func NewEventHandlers(application *app.App, sources []depth.Source) *EventHandlers {
	eh := &EventHandlers{
		application:    application,
		sources:        sources,
		lastAdjustTime: time.Now(),
	}
	eh.SetupCallbacks(application.Window)
	return eh
}

// SetupCallbacks configures all GLFW event callbacks.
func (eh *EventHandlers) SetupCallbacks(window *glfw.Window) {
	window.SetKeyCallback(func(wnd *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		eh.handleKey(key, action, mods) // for various actions
	})
	window.SetMouseButtonCallback(func(wnd *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		eh.handleMouseButton(button, action) // for orbiting
	})
	window.SetCursorPosCallback(func(wnd *glfw.Window, xpos, ypos float64) {
		eh.handleCursorPos(xpos, ypos) // for drag-orbiting
	})
	window.SetScrollCallback(func(wnd *glfw.Window, _, zoomDelta float64) {
		eh.performZoom(zoomDelta) // for zooming
	})
	window.SetFramebufferSizeCallback(func(wnd *glfw.Window, newW, newH int) {
		eh.application.View.SetViewport(newW, newH)
	})
}

// handleKey handles keyboard input events.
func (eh *EventHandlers) handleKey(key glfw.Key, action glfw.Action, mods glfw.ModifierKey) {
	switch key {
	case glfw.KeyEscape:
		if action == glfw.Press {
			eh.application.Window.SetShouldClose(true)
		}
	case glfw.KeySpace:
		if action == glfw.Press {
			eh.handleSceneCycle((mods & glfw.ModShift) == 0)
		}
	case glfw.KeyEqual:
		eh.handleThresholdKeys(action, true /* up */)
	case glfw.KeyMinus:
		eh.handleThresholdKeys(action, false /* up */)
	case glfw.KeyP:
		if action == glfw.Press {
			eh.application.CycleProjection()
		}
	case glfw.KeyO:
		if action == glfw.Press {
			eh.application.ToggleDisocclusion()
		}
	case glfw.KeyB:
		if action == glfw.Press {
			eh.application.ToggleBackground()
		}
	case glfw.KeyC:
		if action == glfw.Press {
			eh.application.CycleColorMode()
		}
	case glfw.KeyW:
		if action == glfw.Press {
			eh.application.ToggleWireframe()
		}
	case glfw.KeyR:
		if action == glfw.Press {
			eh.application.View.Reset()
		}
	}
}

// handleSceneCycle advances (or with shift, rewinds) through the scene list.
func (eh *EventHandlers) handleSceneCycle(forward bool) {
	if len(eh.sources) < 2 {
		return // nothing to cycle
	}
	if forward {
		eh.sourceIndex = (eh.sourceIndex + 1) % len(eh.sources)
	} else {
		eh.sourceIndex = (eh.sourceIndex + len(eh.sources) - 1) % len(eh.sources)
	}
	eh.application.SetSource(eh.sources[eh.sourceIndex])
}

// handleThresholdKeys handles -/= presses and releases (error threshold).
func (eh *EventHandlers) handleThresholdKeys(action glfw.Action, up bool) {
	switch action {
	case glfw.Press:
		if up {
			eh.kUpHeld, eh.kDownHeld = true, false
		} else {
			eh.kDownHeld, eh.kUpHeld = true, false
		}
		eh.application.AdjustK(up)
		eh.lastAdjustTime = time.Now()

	case glfw.Release:
		eh.kUpHeld = false
		eh.kDownHeld = false

	case glfw.Repeat:
		// Ignore repeat events - we handle continuous adjustment ourselves to
		// ensure consistent timing.
	}
}

// handleContinuousAdjustment steps the error threshold while -/= is held.
func (eh *EventHandlers) handleContinuousAdjustment() {
	if !(eh.kUpHeld || eh.kDownHeld) {
		return // nothing to do
	}

	now := time.Now()
	if now.Sub(eh.lastAdjustTime) < repeatInterval {
		return // not enough time has passed since the last adjustment
	}

	eh.application.AdjustK(eh.kUpHeld)
	eh.lastAdjustTime = now
}

// handleMouseButton handles mouse button events for orbiting.
func (eh *EventHandlers) handleMouseButton(button glfw.MouseButton, action glfw.Action) {
	if button != glfw.MouseButtonLeft {
		return // nothing to do
	}

	switch action {
	case glfw.Press:
		eh.startOrbit()
	case glfw.Release:
		eh.stopOrbit()
	}
}

// handleCursorPos handles mouse movement for orbiting.
func (eh *EventHandlers) handleCursorPos(xpos, ypos float64) {
	if !eh.isDragging {
		return
	}

	view := eh.application.View
	view.Yaw = eh.dragStartYaw
	view.Pitch = eh.dragStartPitch
	view.Rotate(
		(xpos-eh.dragStartMouseX)*orbitSensitivity,
		(ypos-eh.dragStartMouseY)*orbitSensitivity,
	)
}

// startOrbit starts the drag-orbit operation.
func (eh *EventHandlers) startOrbit() {
	eh.isDragging = true
	eh.dragStartMouseX, eh.dragStartMouseY = eh.application.Window.GetCursorPos()
	view := eh.application.View
	eh.dragStartYaw, eh.dragStartPitch = view.Yaw, view.Pitch
}

// stopOrbit ends the drag-orbit operation.
func (eh *EventHandlers) stopOrbit() {
	eh.isDragging = false
}

// performZoom handles scroll-wheel zoom.
func (eh *EventHandlers) performZoom(zoomDelta float64) {
	eh.application.View.Zoom(1.0 - zoomDelta*zoomStep)
}
