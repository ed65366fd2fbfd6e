package icons

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Size is the edge length of every stored icon
const Size = 256

//go:embed assets/default_icon.png
var defaultIcon []byte

// MaxDimension bounds the width and height of a raster image accepted for
// decoding. SVG documents are always rasterized at Size.
const MaxDimension = 4096

// ErrNotImage is returned for payloads that are not a supported image
var ErrNotImage = errors.New("not a supported image")

// DefaultIcon returns the bundled fallback icon
func DefaultIcon() []byte {
	return defaultIcon
}

// IsVector reports whether data is an SVG document
func IsVector(data []byte) bool {
	return mimetype.Detect(data).Is("image/svg+xml")
}

// Decode decodes a raster image or rasterizes an SVG at Size×Size.
func Decode(data []byte) (img image.Image, vector bool, err error) {
	if IsVector(data) {
		img, err = rasterize(data, Size)
		return img, true, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if cfg.Width > MaxDimension || cfg.Height > MaxDimension {
		return nil, false, fmt.Errorf("%w: %dx%d exceeds %dx%d", ErrNotImage, cfg.Width, cfg.Height, MaxDimension, MaxDimension)
	}

	img, _, err = image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return img, false, nil
}

func rasterize(data []byte, size int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		return nil, fmt.Errorf("svg has no usable view box")
	}

	icon.SetTarget(0, 0, float64(size), float64(size))
	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1.0)
	return rgba, nil
}

// Fit scales img into a Size×Size canvas, keeping its aspect ratio and
// centering it on a transparent background.
func Fit(img image.Image) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, Size, Size))

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return dst
	}

	tw, th := Size, Size
	if w > h {
		th = h * Size / w
	} else if h > w {
		tw = w * Size / h
	}
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}

	x0 := (Size - tw) / 2
	y0 := (Size - th) / 2
	draw.CatmullRom.Scale(dst, image.Rect(x0, y0, x0+tw, y0+th), img, b, draw.Over, nil)
	return dst
}

// NormalizeBytes converts any supported image to Size×Size PNG bytes.
func NormalizeBytes(data []byte) ([]byte, bool, error) {
	img, vector, err := Decode(data)
	if err != nil {
		return nil, vector, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, Fit(img)); err != nil {
		return nil, vector, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), vector, nil
}

// Normalize reads the image at src and stores it as a PNG at dst.
func Normalize(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	out, _, err := NormalizeBytes(data)
	if err != nil {
		return fmt.Errorf("%s: %w", src, err)
	}
	return writeIcon(dst, out)
}

// WriteDefault stores the bundled fallback icon at dst
func WriteDefault(dst string) error {
	return writeIcon(dst, defaultIcon)
}

func writeIcon(dst string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
