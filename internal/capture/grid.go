package capture

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	gridLine  = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	gridLabel = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	gridEdge  = color.RGBA{A: 255}
)

// Annotate draws a coordinate grid every step pixels with "(x,y)" labels at
// each intersection. Labels are in img's own pixel space.
func Annotate(img *image.RGBA, step int) {
	if step <= 0 {
		return
	}
	b := img.Bounds()
	for x := b.Min.X; x < b.Max.X; x += step {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			img.Set(x, y, gridLine)
		}
	}
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.Set(x, y, gridLine)
		}
	}
	for x := b.Min.X; x < b.Max.X; x += step {
		for y := b.Min.Y; y < b.Max.Y; y += step {
			drawLabel(img, fmt.Sprintf("(%d,%d)", x-b.Min.X, y-b.Min.Y), x+2, y+13)
		}
	}
}

// drawLabel draws text with a one pixel outline so it stays readable on
// any background.
func drawLabel(img *image.RGBA, text string, x, y int) {
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			drawString(img, text, x+dx, y+dy, gridEdge)
		}
	}
	drawString(img, text, x, y, gridLabel)
}

func drawString(img *image.RGBA, text string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
