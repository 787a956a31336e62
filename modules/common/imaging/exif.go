package imaging

import (
	"bytes"
	"image"

	"github.com/rwcarlsen/goexif/exif"
)

// orientationOf reads the EXIF orientation tag from the original bytes.
// Anything unreadable (no EXIF segment, PNG input, corrupt tag) counts as
// orientation 1, the identity.
func orientationOf(data []byte) int {
	meta, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := meta.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	value, err := tag.Int(0)
	if err != nil || value < 1 || value > 8 {
		return 1
	}
	return value
}

// applyOrientation rewrites pixel data so it matches the intended display
// orientation. The eight EXIF cases reduce to a coordinate remap.
func applyOrientation(src image.Image, orientation int) image.Image {
	if orientation <= 1 || orientation > 8 {
		return src
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	switch orientation {
	case 2: // mirrored horizontally
		return remap(src, w, h, func(x, y int) (int, int) { return w - 1 - x, y })
	case 3: // rotated 180
		return remap(src, w, h, func(x, y int) (int, int) { return w - 1 - x, h - 1 - y })
	case 4: // mirrored vertically
		return remap(src, w, h, func(x, y int) (int, int) { return x, h - 1 - y })
	case 5: // mirrored then rotated 270 CW
		return remap(src, h, w, func(x, y int) (int, int) { return y, x })
	case 6: // rotated 90 CW
		return remap(src, h, w, func(x, y int) (int, int) { return y, h - 1 - x })
	case 7: // mirrored then rotated 90 CW
		return remap(src, h, w, func(x, y int) (int, int) { return w - 1 - y, h - 1 - x })
	case 8: // rotated 270 CW
		return remap(src, h, w, func(x, y int) (int, int) { return w - 1 - y, x })
	}
	return src
}

// remap builds a dstW x dstH image where each destination pixel is read from
// the source coordinate returned by at.
func remap(src image.Image, dstW, dstH int, at func(x, y int) (int, int)) image.Image {
	bounds := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, dstW, dstH))
	for y := 0; y < dstH; y++ {
		for x := 0; x < dstW; x++ {
			srcX, srcY := at(x, y)
			dst.Set(x, y, src.At(bounds.Min.X+srcX, bounds.Min.Y+srcY))
		}
	}
	return dst
}
