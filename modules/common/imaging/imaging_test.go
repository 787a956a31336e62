package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a-elhaag/canvas-smith/modules/common/apperr"
)

var testLimits = Limits{
	MaxBytes:  10 * 1024 * 1024,
	MaxWidth:  2048,
	MaxHeight: 2048,
	AllowedTypes: []string{
		"image/jpeg", "image/png", "image/webp", "image/gif",
		"image/bmp", "image/tiff", "image/svg+xml",
	},
}

func pngBytes(t *testing.T, width, height int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalizeSmallImagePassesThrough(t *testing.T) {
	data := pngBytes(t, 640, 480, color.NRGBA{R: 200, G: 200, B: 200, A: 255})

	got, err := Normalize(data, "image/png", "sketch.png", testLimits)
	require.NoError(t, err)

	assert.Equal(t, "png", got.Format)
	assert.Equal(t, 640, got.Width)
	assert.Equal(t, 480, got.Height)
}

func TestNormalizeDownscalesOversizedImage(t *testing.T) {
	data := pngBytes(t, 3000, 2000, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	got, err := Normalize(data, "image/png", "big.png", testLimits)
	require.NoError(t, err)

	assert.LessOrEqual(t, got.Width, 2048)
	assert.LessOrEqual(t, got.Height, 2048)

	// Aspect ratio 3:2 survives within rounding tolerance.
	originalRatio := 3000.0 / 2000.0
	gotRatio := float64(got.Width) / float64(got.Height)
	assert.InDelta(t, originalRatio, gotRatio, originalRatio*0.01)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	data := pngBytes(t, 3000, 2000, color.NRGBA{R: 120, G: 130, B: 140, A: 255})

	first, err := Normalize(data, "image/png", "a.png", testLimits)
	require.NoError(t, err)

	second, err := Normalize(first.Data, "image/png", "a.png", testLimits)
	require.NoError(t, err)

	assert.Equal(t, first.Width, second.Width)
	assert.Equal(t, first.Height, second.Height)
	assert.Equal(t, first.Data, second.Data, "already-normalized input re-encodes byte-identically")
}

func TestNormalizeRejectsOversizedFile(t *testing.T) {
	limits := testLimits
	limits.MaxBytes = 100

	_, err := Normalize(make([]byte, 101), "image/png", "big.png", limits)
	require.Error(t, err)
	assert.Equal(t, apperr.KindFileTooLarge, apperr.KindOf(err))
}

func TestNormalizeRejectsUnsupportedType(t *testing.T) {
	_, err := Normalize([]byte("%PDF-1.4"), "application/pdf", "doc.pdf", testLimits)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnsupportedMediaType, apperr.KindOf(err))
}

func TestNormalizeRejectsCorruptBytes(t *testing.T) {
	_, err := Normalize([]byte("definitely not an image"), "image/png", "fake.png", testLimits)
	require.Error(t, err)
	assert.Equal(t, apperr.KindCorruptImage, apperr.KindOf(err))
}

func TestNormalizeFlattensTransparencyOntoWhite(t *testing.T) {
	// Fully transparent pixels must come out white, not black.
	data := pngBytes(t, 10, 10, color.NRGBA{})

	got, err := Normalize(data, "image/png", "transparent.png", testLimits)
	require.NoError(t, err)

	decoded, _, err := image.Decode(bytes.NewReader(got.Data))
	require.NoError(t, err)

	r, g, b, a := decoded.At(5, 5).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), g)
	assert.Equal(t, uint32(0xffff), b)
	assert.Equal(t, uint32(0xffff), a)
}

func TestNormalizeSVGPlaceholder(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"><rect width="10" height="10"/></svg>`)

	got, err := Normalize(svg, "image/svg+xml", "sketch.svg", testLimits)
	require.NoError(t, err)

	assert.Equal(t, "png", got.Format)
	assert.Equal(t, svgPlaceholderWidth, got.Width)
	assert.Equal(t, svgPlaceholderHeight, got.Height)
}

func TestNormalizeRejectsFakeSVG(t *testing.T) {
	_, err := Normalize([]byte("just text"), "image/svg+xml", "fake.svg", testLimits)
	require.Error(t, err)
	assert.Equal(t, apperr.KindCorruptImage, apperr.KindOf(err))
}

func TestResolveContentTypeExtensionFallback(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		filename    string
		want        string
		wantErr     bool
	}{
		{"declared type wins", "image/png", "file.jpg", "image/png", false},
		{"parameters stripped", "image/png; charset=binary", "file.png", "image/png", false},
		{"octet-stream falls back to extension", "application/octet-stream", "photo.jpeg", "image/jpeg", false},
		{"empty type falls back to extension", "", "scan.tiff", "image/tiff", false},
		{"case-insensitive extension", "", "UPPER.PNG", "image/png", false},
		{"no useful signal", "application/octet-stream", "file.bin", "", true},
		{"disallowed everywhere", "text/plain", "notes.txt", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveContentType(tt.contentType, tt.filename, testLimits.AllowedTypes)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperr.KindUnsupportedMediaType, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFitWithinNeverUpscales(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 100, 50))
	got := fitWithin(src, 2048, 2048)
	assert.Equal(t, src.Bounds(), got.Bounds())
}

func TestLooksLikeSVG(t *testing.T) {
	assert.True(t, looksLikeSVG([]byte(`<SVG viewBox="0 0 1 1"></SVG>`)))
	assert.True(t, looksLikeSVG([]byte("<?xml version=\"1.0\"?>\n<svg></svg>")))
	assert.False(t, looksLikeSVG([]byte("<html></html>")))
	assert.False(t, looksLikeSVG([]byte("<svg never closed")))
}
