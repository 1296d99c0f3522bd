package screenshot

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

// Scale upscales an encoded PNG frame by an integer factor using
// nearest-neighbor sampling, keeping the crisp pixel look of the source.
// A factor below two returns the input unchanged.
func Scale(frame []byte, factor int) ([]byte, error) {
	if factor < 2 {
		return frame, nil
	}

	src, err := png.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx()*factor, bounds.Dy()*factor))
	for y := 0; y < bounds.Dy()*factor; y++ {
		srcY := bounds.Min.Y + y/factor
		for x := 0; x < bounds.Dx()*factor; x++ {
			dst.Set(x, y, src.At(bounds.Min.X+x/factor, srcY))
		}
	}

	var out bytes.Buffer
	if err := png.Encode(&out, dst); err != nil {
		return nil, fmt.Errorf("encode scaled frame: %w", err)
	}
	return out.Bytes(), nil
}
