// Package imaging turns uploaded bytes into RGB rasters and back.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

var (
	ErrDecode          = errors.New("cannot identify image file")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// DefaultMaxPixels bounds the decoded raster when the caller has no budget.
const DefaultMaxPixels = 40_000_000

// PreviewEdge is the longest edge of the image embedded in the page.
const PreviewEdge = 800

// Decode reads a PNG, JPEG or WebP stream and returns it as an opaque RGB
// raster together with the detected format name. Alpha is dropped, not
// blended, so transparent pixels keep their colour channels. The header is
// checked first; images over maxPixels (<= 0 means DefaultMaxPixels) are
// rejected before any pixel data is decoded.
func Decode(r io.Reader, maxPixels int) (*image.RGBA, string, error) {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", fmt.Errorf("%w: empty image %dx%d", ErrDecode, cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, "", fmt.Errorf("%w: %dx%d exceeds the %d pixel limit", ErrDecode, cfg.Width, cfg.Height, maxPixels)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return ToRGB(img), format, nil
}

// ToRGB copies img into a zero-origin RGBA with every alpha set to opaque.
func ToRGB(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			i := out.PixOffset(x-b.Min.X, y-b.Min.Y)
			out.Pix[i+0] = c.R
			out.Pix[i+1] = c.G
			out.Pix[i+2] = c.B
			out.Pix[i+3] = 0xff
		}
	}
	return out
}

// CheckUploadType rejects file names whose extension is not in allowed.
func CheckUploadType(filename string, allowed []string) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	for _, a := range allowed {
		if ext == a {
			return nil
		}
	}
	if ext == "" {
		return fmt.Errorf("%w: %q has no extension (allowed: %s)", ErrUnsupportedType, filename, strings.Join(allowed, ", "))
	}
	return fmt.Errorf("%w: .%s (allowed: %s)", ErrUnsupportedType, ext, strings.Join(allowed, ", "))
}

// EncodeJPEG encodes img as a JPEG at the given quality (1-100).
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURL renders img as an inline JPEG suitable for an <img src>, scaled
// down so neither edge exceeds PreviewEdge.
func DataURL(img image.Image) (string, error) {
	data, err := EncodeJPEG(resize.Thumbnail(PreviewEdge, PreviewEdge, img, resize.Lanczos3), 85)
	if err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data), nil
}
