// Package capture crops, scales and encodes screen captures for a model.
package capture

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"golang.org/x/image/draw"

	"github.com/1broseidon/xseat/internal/platform"
)

// Image formats.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// Options controls post-processing of a capture.
type Options struct {
	// MaxWidth and MaxHeight bound the output size; zero is unbounded.
	MaxWidth  int
	MaxHeight int
	// Format is png (default) or jpeg.
	Format  string
	Quality int
	// Grid overlays coordinate labels every Grid pixels of the source.
	Grid int
}

// Shot is an encoded capture of a region.
type Shot struct {
	Data     []byte
	MIMEType string
	// Width and Height are the encoded image size.
	Width  int
	Height int
	// Region is the captured area in absolute screen coordinates.
	Region platform.Rect
	// Scale maps image pixels back to region pixels: region = image * Scale.
	Scale float64
}

// DataURL returns the image as a data: URL.
func (s *Shot) DataURL() string {
	return DataURL(s.MIMEType, s.Data)
}

// DataURL formats data as a base64 data: URL.
func DataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Process crops full to region, then scales and encodes it.
func Process(full *image.RGBA, region platform.Rect, opts Options) (*Shot, error) {
	cropped, err := Crop(full, region)
	if err != nil {
		return nil, err
	}
	if opts.Grid > 0 {
		Annotate(cropped, opts.Grid)
	}
	img, scale := Fit(cropped, opts.MaxWidth, opts.MaxHeight)
	data, mimeType, err := Encode(img, opts.Format, opts.Quality)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &Shot{
		Data:     data,
		MIMEType: mimeType,
		Width:    b.Dx(),
		Height:   b.Dy(),
		Region:   region,
		Scale:    scale,
	}, nil
}

// Crop copies region out of src. The result always has the size of region
// with its origin at (0, 0), so image pixel (x, y) is region pixel (x, y);
// any part of region outside src is left black.
func Crop(src *image.RGBA, region platform.Rect) (*image.RGBA, error) {
	want := image.Rect(region.X, region.Y, region.X+region.Width, region.Y+region.Height)
	r := want.Intersect(src.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("region %v lies outside the %v display", want, src.Bounds().Size())
	}
	dst := image.NewRGBA(image.Rect(0, 0, want.Dx(), want.Dy()))
	draw.Draw(dst, dst.Bounds(), image.Black, image.Point{}, draw.Src)
	draw.Draw(dst, r.Sub(want.Min), src, r.Min, draw.Src)
	return dst, nil
}

// FitSize returns the size a w x h image is scaled to so it fits within
// maxW x maxH, and the factor mapping output pixels back to input pixels.
// Zero bounds are unbounded.
func FitSize(w, h, maxW, maxH int) (int, int, float64) {
	scale := 1.0
	if maxW > 0 && w > maxW {
		scale = float64(w) / float64(maxW)
	}
	if maxH > 0 && h > maxH {
		if s := float64(h) / float64(maxH); s > scale {
			scale = s
		}
	}
	if scale == 1.0 {
		return w, h, 1.0
	}
	return max(1, int(float64(w)/scale)), max(1, int(float64(h)/scale)), scale
}

// Fit downscales img to fit within maxW x maxH, keeping the aspect ratio.
// It returns the image and the factor from FitSize.
func Fit(img image.Image, maxW, maxH int) (image.Image, float64) {
	b := img.Bounds()
	nw, nh, scale := FitSize(b.Dx(), b.Dy(), maxW, maxH)
	if scale == 1.0 {
		return img, 1.0
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst, scale
}

// Encode serializes img as png or jpeg.
func Encode(img image.Image, format string, quality int) ([]byte, string, error) {
	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case "", FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", fmt.Errorf("encode png: %w", err)
		}
		return buf.Bytes(), "image/png", nil
	case FormatJPEG, "jpg":
		if quality <= 0 || quality > 100 {
			quality = 85
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, "", fmt.Errorf("encode jpeg: %w", err)
		}
		return buf.Bytes(), "image/jpeg", nil
	default:
		return nil, "", fmt.Errorf("unsupported image format %q", format)
	}
}
