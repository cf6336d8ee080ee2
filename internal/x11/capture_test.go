package x11

import (
	"image/color"
	"testing"
)

func TestZpixmapToRGBA(t *testing.T) {
	// Two pixels: pure blue then pure red, BGRX order with junk padding.
	data := []byte{
		0xff, 0x00, 0x00, 0x7f,
		0x00, 0x00, 0xff, 0x00,
	}
	img, err := zpixmapToRGBA(data, 2, 1)
	if err != nil {
		t.Fatal(err)
	}

	if got := img.RGBAAt(0, 0); got != (color.RGBA{R: 0, G: 0, B: 0xff, A: 0xff}) {
		t.Errorf("pixel 0 = %v, want blue", got)
	}
	if got := img.RGBAAt(1, 0); got != (color.RGBA{R: 0xff, G: 0, B: 0, A: 0xff}) {
		t.Errorf("pixel 1 = %v, want red", got)
	}
}

func TestZpixmapToRGBARejectsShortData(t *testing.T) {
	if _, err := zpixmapToRGBA(make([]byte, 6), 2, 1); err == nil {
		t.Fatal("expected error for 24bpp-sized buffer")
	}
	if _, err := zpixmapToRGBA(nil, 0, 1); err == nil {
		t.Fatal("expected error for empty size")
	}
}
