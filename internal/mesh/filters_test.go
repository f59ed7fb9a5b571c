package mesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func TestRubberSheetSidewaysSliver(t *testing.T) {
	// A long triangle running along the view direction: its normal is
	// perpendicular to the camera ray and its longest edge dwarfs the size
	// threshold. The classic disocclusion bridge.
	a := mgl32.Vec3{0, 0, -1}
	b := mgl32.Vec3{0, 0, -3}
	c := mgl32.Vec3{0.01, 0, -2}
	require.True(t, isRubberSheet(a, b, c, 0.1, 0.1))
}

func TestRubberSheetFacingTriangle(t *testing.T) {
	// A triangle facing the camera head-on, regardless of size.
	a := mgl32.Vec3{0, 0, -2}
	b := mgl32.Vec3{1, 0, -2}
	c := mgl32.Vec3{0, 1, -2}
	require.False(t, isRubberSheet(a, b, c, 0.1, 0.1))
}

func TestRubberSheetSmallSliverTolerated(t *testing.T) {
	// Sideways but small relative to its distance: below the size threshold.
	a := mgl32.Vec3{0, 0, -2}
	b := mgl32.Vec3{0, 0, -2.1}
	c := mgl32.Vec3{0.001, 0, -2.05}
	require.False(t, isRubberSheet(a, b, c, 0.1, 0.1))
}

func TestRubberSheetDegenerate(t *testing.T) {
	a := mgl32.Vec3{1, 1, -5}
	require.False(t, isRubberSheet(a, a, a, 0.1, 0.1))
}

func TestIsBackground(t *testing.T) {
	f := &frame{cfg: Config{BackgroundTolerance: 0.01}, far: 20}
	require.True(t, f.isBackground(20))
	require.True(t, f.isBackground(19.995))
	require.True(t, f.isBackground(0), "zero distance is 'no data' and classifies as background")
	require.False(t, f.isBackground(10))
	require.False(t, f.isBackground(19.5))
}
