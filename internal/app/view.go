package app

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	minRadius = 0.25
	maxRadius = 200.0
	maxPitch  = math.Pi/2 - 0.05
)

// View manages the orbit camera: yaw and pitch around a target point at a
// given radius, plus the viewport dimensions.
type View struct {
	Yaw, Pitch    float64
	Radius        float64
	Target        mgl32.Vec3
	Width, Height int

	homeRadius float64
	homeTarget mgl32.Vec3
}

// NewView creates a view orbiting the given target from the given radius.
func NewView(width, height int, target mgl32.Vec3, radius float64) *View {
	return &View{
		Radius:     radius,
		Target:     target,
		Width:      width,
		Height:     height,
		homeRadius: radius,
		homeTarget: target,
	}
}

// Rotate adjusts yaw and pitch, clamping pitch short of the poles.
func (vs *View) Rotate(dYaw, dPitch float64) {
	vs.Yaw += dYaw
	vs.Pitch += dPitch
	if vs.Pitch > maxPitch {
		vs.Pitch = maxPitch
	} else if vs.Pitch < -maxPitch {
		vs.Pitch = -maxPitch
	}
}

// Zoom scales the orbit radius, clamping to valid range.
func (vs *View) Zoom(factor float64) {
	r := vs.Radius * factor
	if r < minRadius {
		r = minRadius
	} else if r > maxRadius {
		r = maxRadius
	}
	vs.Radius = r
}

// SetViewport updates the viewport dimensions.
func (vs *View) SetViewport(width, height int) {
	vs.Width = width
	vs.Height = height
}

// RetargetTo recenters the orbit (and the home position) on a new point and
// radius, used when the scene changes.
func (vs *View) RetargetTo(target mgl32.Vec3, radius float64) {
	vs.Target = target
	vs.Radius = radius
	vs.homeTarget = target
	vs.homeRadius = radius
}

// Reset restores the home orbit.
func (vs *View) Reset() {
	vs.Yaw, vs.Pitch = 0, 0
	vs.Radius = vs.homeRadius
	vs.Target = vs.homeTarget
}

// Eye returns the camera position implied by the current orbit.
func (vs *View) Eye() mgl32.Vec3 {
	cp := math.Cos(vs.Pitch)
	dir := mgl32.Vec3{
		float32(cp * math.Sin(vs.Yaw)),
		float32(math.Sin(vs.Pitch)),
		float32(cp * math.Cos(vs.Yaw)),
	}
	return vs.Target.Add(dir.Mul(float32(vs.Radius)))
}

// Matrix returns the combined projection-view matrix for the current orbit
// and viewport.
func (vs *View) Matrix() mgl32.Mat4 {
	aspect := float32(1)
	if vs.Height > 0 {
		aspect = float32(vs.Width) / float32(vs.Height)
	}
	proj := mgl32.Perspective(mgl32.DegToRad(60), aspect, 0.05, 1000)
	view := mgl32.LookAtV(vs.Eye(), vs.Target, mgl32.Vec3{0, 1, 0})
	return proj.Mul4(view)
}
