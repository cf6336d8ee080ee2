package x11

import (
	"fmt"
	"image"

	"github.com/BurntSushi/xgb/xproto"
)

// CaptureRoot grabs the full root window as an RGBA image.
func (c *Connection) CaptureRoot() (*image.RGBA, error) {
	width, height, err := c.ScreenSize()
	if err != nil {
		return nil, err
	}

	reply, err := xproto.GetImage(
		c.Conn(),
		xproto.ImageFormatZPixmap,
		xproto.Drawable(c.Root),
		0, 0,
		uint16(width), uint16(height),
		0xffffffff,
	).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to capture root window: %w", err)
	}

	return zpixmapToRGBA(reply.Data, width, height)
}

// zpixmapToRGBA converts a 32 bits-per-pixel little-endian ZPixmap (BGRX, the
// layout for depth 24 and 32 visuals) to RGBA.
func zpixmapToRGBA(data []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	pixels := width * height
	if len(data) < pixels*4 {
		return nil, fmt.Errorf("unsupported pixmap layout: %d bytes for %dx%d pixels", len(data), width, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < pixels; i++ {
		src := data[i*4 : i*4+4]
		dst := img.Pix[i*4 : i*4+4]
		dst[0] = src[2]
		dst[1] = src[1]
		dst[2] = src[0]
		dst[3] = 0xff
	}
	return img, nil
}
