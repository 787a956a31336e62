package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	svgPlaceholderWidth  = 800
	svgPlaceholderHeight = 600
)

// looksLikeSVG does a cheap structural check; full XML parsing is not worth
// it for an input we only substitute with a placeholder anyway.
func looksLikeSVG(data []byte) bool {
	lower := bytes.ToLower(data)
	return bytes.Contains(lower, []byte("<svg")) && bytes.Contains(lower, []byte("</svg"))
}

// svgPlaceholder builds the notice raster substituted for vector input.
// This is a deliberate product compromise, not a rasterizer: swapping in a
// real vector renderer would change generation results for SVG uploads.
func svgPlaceholder() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, svgPlaceholderWidth, svgPlaceholderHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	drawText(img, 50, 50, "SVG Image Detected", color.Black)
	drawText(img, 50, 100, "Converted to PNG for AI processing", color.Gray{Y: 128})

	return img
}

func drawText(dst draw.Image, x, y int, text string, c color.Color) {
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}
