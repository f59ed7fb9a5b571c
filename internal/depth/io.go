package depth

import (
	"fmt"
	"image"
	"image/color"
	"os"

	_ "image/png" // 16-bit grayscale PNG depth exports

	_ "golang.org/x/image/tiff" // TIFF depth exports
)

// Metadata carries the capture parameters an image file doesn't encode.
type Metadata struct {
	HFOVDeg, VFOVDeg float64
	Near, Far        float32
}

// LoadFile reads a depth map from a grayscale PNG or TIFF file. Pixel values
// normalize to encoded samples in [0,1]; 16-bit sources keep their full
// precision.
func LoadFile(path string, meta Metadata) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening depth map: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding depth map %q: %w", path, err)
	}

	bounds := img.Bounds()
	m := NewMap(bounds.Dx(), bounds.Dy(), meta.HFOVDeg, meta.VFOVDeg, meta.Near, meta.Far)
	for py := 0; py < m.H; py++ {
		for px := 0; px < m.W; px++ {
			g := color.Gray16Model.Convert(img.At(bounds.Min.X+px, bounds.Min.Y+py)).(color.Gray16)
			m.Set(px, py, float32(g.Y)/65535.0)
		}
	}
	return m, nil
}
