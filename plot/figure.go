package plot

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

// Figure is a rendered PNG image. Every render call returns its own Figure;
// nothing is kept in package state.
type Figure struct {
	Name   string
	Width  int
	Height int
	PNG    []byte
}

func (f *Figure) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(f.PNG)
	return int64(n), err
}

// Save writes the PNG to path, creating parent directories.
func (f *Figure) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, f.PNG, 0o644)
}

// FileName is the figure name with a .png extension.
func (f *Figure) FileName() string {
	return f.Name + ".png"
}

// composeHorizontal places PNG panels side by side, top aligned, on a white canvas.
func composeHorizontal(name string, panels [][]byte) (*Figure, error) {
	images := make([]image.Image, 0, len(panels))
	width, height := 0, 0
	for i, p := range panels {
		img, err := png.Decode(bytes.NewReader(p))
		if err != nil {
			return nil, fmt.Errorf("decode panel %d: %w", i, err)
		}
		b := img.Bounds()
		width += b.Dx()
		if b.Dy() > height {
			height = b.Dy()
		}
		images = append(images, img)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	x := 0
	for _, img := range images {
		b := img.Bounds()
		draw.Draw(canvas, image.Rect(x, 0, x+b.Dx(), b.Dy()), img, b.Min, draw.Over)
		x += b.Dx()
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode figure: %w", err)
	}
	return &Figure{Name: name, Width: width, Height: height, PNG: buf.Bytes()}, nil
}
