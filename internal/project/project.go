// Package project implements the camera math primitives consumed by the
// mesher: distance decoding and the mappings from normalized image
// coordinates to 3D view-space positions. The angular mapping is equiangular,
// so horizontal fields of view beyond 180° (omnidirectional captures) project
// without singularities.
package project

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// DecodeDistance maps a normalized encoded sample in [0,1] linearly into the
// [near, far] distance range.
func DecodeDistance(sample, near, far float32) float32 {
	return near + sample*(far-near)
}

// EncodeDistance is the inverse of DecodeDistance, used by depth sources
// built from metric data.
func EncodeDistance(dist, near, far float32) float32 {
	if far == near {
		return 0
	}
	return (dist - near) / (far - near)
}

// ViewSpace projects a normalized image coordinate at the given distance into
// view space. The camera looks down -Z with +Y up; u grows rightward and v
// downward, matching image addressing.
func ViewSpace(dist float32, u, v float64, hfovDeg, vfovDeg float64) mgl32.Vec3 {
	yaw := (u - 0.5) * hfovDeg * math.Pi / 180
	pitch := (v - 0.5) * vfovDeg * math.Pi / 180

	sy, cy := math.Sincos(yaw)
	sp, cp := math.Sincos(pitch)
	return mgl32.Vec3{
		float32(sy*cp) * dist,
		float32(-sp) * dist,
		float32(-cy*cp) * dist,
	}
}

// Equirect maps a normalized image coordinate onto the unit sphere under a
// full 360°×180° equirectangular parameterization.
func Equirect(u, v float64) mgl32.Vec3 {
	return ViewSpace(1, u, v, 360, 180)
}
