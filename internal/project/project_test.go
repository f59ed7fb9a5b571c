package project

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeDistance(t *testing.T) {
	require.InDelta(t, 0.5, DecodeDistance(0, 0.5, 10), 1e-6)
	require.InDelta(t, 10.0, DecodeDistance(1, 0.5, 10), 1e-6)
	require.InDelta(t, 5.25, DecodeDistance(0.5, 0.5, 10), 1e-6)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, d := range []float32{0.5, 1, 3.7, 10} {
		require.InDelta(t, d, DecodeDistance(EncodeDistance(d, 0.5, 10), 0.5, 10), 1e-5)
	}
}

func TestViewSpaceCenterLooksDownNegativeZ(t *testing.T) {
	p := ViewSpace(2, 0.5, 0.5, 90, 60)
	require.InDelta(t, 0, float64(p.X()), 1e-6)
	require.InDelta(t, 0, float64(p.Y()), 1e-6)
	require.InDelta(t, -2, float64(p.Z()), 1e-6)
}

func TestViewSpacePreservesDistance(t *testing.T) {
	for _, uv := range [][2]float64{{0, 0}, {1, 1}, {0.25, 0.75}, {0.9, 0.1}} {
		p := ViewSpace(3, uv[0], uv[1], 120, 90)
		require.InDelta(t, 3, float64(p.Len()), 1e-5)
	}
}

func TestViewSpaceRightwardYaw(t *testing.T) {
	// u > 0.5 looks to the right of the optical axis.
	p := ViewSpace(1, 0.75, 0.5, 90, 60)
	require.Greater(t, float64(p.X()), 0.0)
	// v > 0.5 is below the axis in image space, so view-space Y is negative.
	q := ViewSpace(1, 0.5, 0.75, 90, 60)
	require.Less(t, float64(q.Y()), 0.0)
}

func TestEquirectUnitSphere(t *testing.T) {
	for _, uv := range [][2]float64{{0, 0.5}, {0.5, 0.5}, {0.999, 0.25}} {
		require.InDelta(t, 1, float64(Equirect(uv[0], uv[1]).Len()), 1e-5)
	}
	// u=0.5 maps to the optical axis.
	require.InDelta(t, -1, float64(Equirect(0.5, 0.5).Z()), 1e-6)
}
