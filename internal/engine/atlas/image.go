package atlas

import (
	"fmt"
	"image"
	_ "image/png"
	"os"

	_ "github.com/ftrvxmtrx/tga"
)

// LoadImage decodes the atlas texture (PNG or TGA, detected by content).
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open atlas image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode atlas image %s: %w", path, err)
	}
	return img, nil
}

// CheckImage verifies that the decoded texture matches the dimensions the
// descriptor declares. A mismatch means UVs would sample the wrong tiles,
// so it is treated as a fatal configuration error like a missing rectangle.
func (a *Atlas) CheckImage(img image.Image) error {
	b := img.Bounds()
	if b.Dx() != a.desc.Width || b.Dy() != a.desc.Height {
		return fmt.Errorf("atlas image is %dx%d, descriptor declares %dx%d",
			b.Dx(), b.Dy(), a.desc.Width, a.desc.Height)
	}
	return nil
}
