// Package imaging validates and normalizes uploaded sketch images into the
// canonical form sent to the AI service: opaque RGB (or grayscale) pixels,
// bounded dimensions, lossless PNG encoding. PNG is preferred because
// sketches are line art and fine lines survive lossless encoding; Go's PNG
// encoder has no optimizer pass, so output bytes are deterministic for
// identical input and configuration.
package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	"image/png"
	"log"
	"math"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration

	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/tiff" // TIFF decoder registration

	"github.com/a-elhaag/canvas-smith/modules/common/apperr"
)

const mimeSVG = "image/svg+xml"

// Limits is the read-only normalization policy, taken from configuration.
type Limits struct {
	MaxBytes     int64
	MaxWidth     int
	MaxHeight    int
	AllowedTypes []string
}

// Normalized is the canonical encoded image handed to the prompt builder.
type Normalized struct {
	Data   []byte
	Format string // fixed output encoding tag ("png")
	Width  int
	Height int
}

var extensionToMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".svg":  mimeSVG,
}

// Normalize validates raw upload bytes and produces the canonical PNG form:
// size and media-type checks, decode, EXIF re-orientation, white-background
// flatten, downscale-only bounded fit, lossless re-encode. SVG input is not
// rasterized; it yields a fixed placeholder raster carrying a short notice.
func Normalize(data []byte, contentType, filename string, limits Limits) (*Normalized, error) {
	if limits.MaxBytes > 0 && int64(len(data)) > limits.MaxBytes {
		return nil, apperr.New(apperr.KindFileTooLarge,
			"file too large, maximum size is %dMB", limits.MaxBytes/(1024*1024))
	}

	mime, err := ResolveContentType(contentType, filename, limits.AllowedTypes)
	if err != nil {
		return nil, err
	}

	if mime == mimeSVG {
		if !looksLikeSVG(data) {
			return nil, apperr.New(apperr.KindCorruptImage, "invalid SVG file format")
		}
		log.Printf("🖊️  SVG sketch detected, substituting placeholder raster")
		return encodePNG(svgPlaceholder())
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindCorruptImage, err, "invalid image file")
	}

	img = applyOrientation(img, orientationOf(data))
	img = flatten(img)

	before := img.Bounds()
	img = fitWithin(img, limits.MaxWidth, limits.MaxHeight)
	after := img.Bounds()
	if after != before {
		log.Printf("📐 Downscaled %s image %dx%d → %dx%d",
			format, before.Dx(), before.Dy(), after.Dx(), after.Dy())
	}

	return encodePNG(img)
}

// ResolveContentType trusts the declared type when allowed, falls back to
// the filename extension, and rejects everything else.
func ResolveContentType(contentType, filename string, allowed []string) (string, error) {
	declared := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(declared, ";"); idx >= 0 {
		declared = strings.TrimSpace(declared[:idx])
	}

	allowedSet := make(map[string]bool, len(allowed))
	for _, t := range allowed {
		allowedSet[strings.ToLower(t)] = true
	}

	if allowedSet[declared] {
		return declared, nil
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if fromExt, ok := extensionToMIME[ext]; ok && allowedSet[fromExt] {
		log.Printf("🔧 Content type %q overridden by extension %s → %s", contentType, ext, fromExt)
		return fromExt, nil
	}

	return "", apperr.New(apperr.KindUnsupportedMediaType,
		"invalid file type %q, supported formats: JPG, JPEG, PNG, WebP, GIF, BMP, TIFF, SVG", contentType)
}

// flatten composites any transparency over an opaque white background and
// converts the pixels to plain RGB. Grayscale images stay grayscale.
func flatten(src image.Image) image.Image {
	if gray, ok := src.(*image.Gray); ok {
		return gray
	}

	bounds := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Over)
	return dst
}

// fitWithin downscales (never upscales) so both dimensions fit the bounding
// box, preserving aspect ratio, with Catmull-Rom resampling.
func fitWithin(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width <= maxWidth && height <= maxHeight {
		return src
	}

	scale := math.Min(float64(maxWidth)/float64(width), float64(maxHeight)/float64(height))
	newWidth := int(math.Round(float64(width) * scale))
	newHeight := int(math.Round(float64(height) * scale))
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}
	if newWidth > maxWidth {
		newWidth = maxWidth
	}
	if newHeight > maxHeight {
		newHeight = maxHeight
	}

	dst := image.NewNRGBA(image.Rect(0, 0, newWidth, newHeight))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Src, nil)
	return dst
}

func encodePNG(img image.Image) (*Normalized, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to encode normalized image")
	}

	bounds := img.Bounds()
	return &Normalized{
		Data:   buf.Bytes(),
		Format: "png",
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
