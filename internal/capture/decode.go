package capture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Decode reads the pixels of an encoded blob. PNG, JPEG and WEBP are
// recognised.
func Decode(b Blob) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(b.Data))
	if err != nil {
		return nil, fmt.Errorf("capture: decode %s: %w", b.Type, err)
	}
	return img, nil
}
