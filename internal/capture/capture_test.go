package capture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/1broseidon/xseat/internal/platform"
)

func filled(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 7, A: 255})
		}
	}
	return img
}

func TestCrop(t *testing.T) {
	src := filled(100, 80)

	tests := []struct {
		name   string
		region platform.Rect
		// visible is the image pixel showing source pixel (visible.X+region.X, ...).
		visible image.Point
		black   []image.Point
	}{
		{"inside", platform.Rect{X: 10, Y: 20, Width: 30, Height: 40}, image.Pt(0, 0), nil},
		{"clipped right/bottom", platform.Rect{X: 90, Y: 70, Width: 30, Height: 30}, image.Pt(0, 0), []image.Point{{29, 29}, {10, 0}}},
		{"clipped left/top", platform.Rect{X: -5, Y: -5, Width: 10, Height: 10}, image.Pt(5, 5), []image.Point{{0, 0}, {4, 9}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Crop(src, tt.region)
			if err != nil {
				t.Fatal(err)
			}
			if img.Bounds() != image.Rect(0, 0, tt.region.Width, tt.region.Height) {
				t.Errorf("bounds = %v, want the full region size", img.Bounds())
			}
			c := img.RGBAAt(tt.visible.X, tt.visible.Y)
			wantX, wantY := tt.region.X+tt.visible.X, tt.region.Y+tt.visible.Y
			if c.R != uint8(wantX) || c.G != uint8(wantY) {
				t.Errorf("pixel %v = %v, want source pixel (%d,%d)", tt.visible, c, wantX, wantY)
			}
			for _, p := range tt.black {
				if c := img.RGBAAt(p.X, p.Y); c != (color.RGBA{A: 255}) {
					t.Errorf("off-display pixel %v = %v, want black", p, c)
				}
			}
		})
	}
}

func TestCropOutside(t *testing.T) {
	if _, err := Crop(filled(10, 10), platform.Rect{X: 20, Y: 20, Width: 5, Height: 5}); err == nil {
		t.Fatal("expected error for region outside display")
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		maxW, maxH   int
		wantW, wantH int
		wantScale    float64
	}{
		{"unbounded", 200, 100, 0, 0, 200, 100, 1},
		{"already fits", 200, 100, 400, 400, 200, 100, 1},
		{"width bound", 200, 100, 100, 0, 100, 50, 2},
		{"height bound dominates", 200, 100, 150, 25, 50, 25, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, scale := Fit(filled(tt.w, tt.h), tt.maxW, tt.maxH)
			b := img.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
			if scale != tt.wantScale {
				t.Errorf("scale = %v, want %v", scale, tt.wantScale)
			}
		})
	}
}

func TestProcessPNG(t *testing.T) {
	shot, err := Process(filled(64, 48), platform.Rect{X: 8, Y: 8, Width: 32, Height: 16}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if shot.MIMEType != "image/png" || shot.Width != 32 || shot.Height != 16 || shot.Scale != 1 {
		t.Errorf("shot = %s %dx%d scale %v", shot.MIMEType, shot.Width, shot.Height, shot.Scale)
	}
	decoded, err := png.Decode(bytes.NewReader(shot.Data))
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Bounds().Dx() != 32 || decoded.Bounds().Dy() != 16 {
		t.Errorf("decoded bounds = %v", decoded.Bounds())
	}
	if !strings.HasPrefix(shot.DataURL(), "data:image/png;base64,iVBORw0KGgo") {
		t.Errorf("DataURL prefix = %.40s", shot.DataURL())
	}
}

func TestEncodeJPEGAndUnknown(t *testing.T) {
	data, mimeType, err := Encode(filled(8, 8), "JPG", 0)
	if err != nil {
		t.Fatal(err)
	}
	if mimeType != "image/jpeg" || len(data) < 2 || data[0] != 0xff || data[1] != 0xd8 {
		t.Errorf("jpeg encode = %s, % x", mimeType, data[:2])
	}
	if _, _, err := Encode(filled(8, 8), "gif", 0); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestAnnotateDrawsGrid(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 120, 120))
	Annotate(img, 50)
	if c := img.RGBAAt(50, 30); c != gridLine {
		t.Errorf("pixel on vertical grid line = %v", c)
	}
	if c := img.RGBAAt(30, 100); c != gridLine {
		t.Errorf("pixel on horizontal grid line = %v", c)
	}
	if c := img.RGBAAt(75, 75); c == gridLine {
		t.Errorf("pixel between lines was drawn")
	}
}
