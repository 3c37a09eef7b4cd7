// Package backdrop prepares the decorative background picture of the UI.
package backdrop

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

const (
	Width  = 750
	Height = 600
)

// Load decodes the JPEG or PNG file at path, scales it to Width x Height and
// returns it PNG-encoded.
func Load(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open backdrop: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode backdrop %s: %w", path, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode backdrop: %w", err)
	}
	return buf.Bytes(), nil
}
