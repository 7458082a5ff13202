package model

import (
	"image"
	"image/draw"
	"math"

	"github.com/nfnt/resize"
)

// Preprocess resizes img so its shortest edge is ImageSize/CropPct, crops
// the centre ImageSize square and writes normalised NCHW float32 values
// into dst. dst must hold 3*ImageSize*ImageSize values.
//
// The centre square of the source is cut out before resizing, so the
// intermediate raster never grows with the aspect ratio of img.
func Preprocess(img image.Image, m Metadata, dst []float32) {
	size := m.ImageSize
	shortest := uint(math.Floor(float64(size) / m.CropPct))
	if shortest < uint(size) {
		shortest = uint(size)
	}

	resized := resize.Resize(shortest, shortest, centreSquare(img), resize.Lanczos3)

	rb := resized.Bounds()
	left := rb.Min.X + (rb.Dx()-size)/2
	top := rb.Min.Y + (rb.Dy()-size)/2

	plane := size * size
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, bl, _ := resized.At(left+x, top+y).RGBA()

			i := y*size + x
			dst[i] = (float32(r)/65535.0 - m.Mean[0]) / m.Std[0]
			dst[plane+i] = (float32(g)/65535.0 - m.Mean[1]) / m.Std[1]
			dst[2*plane+i] = (float32(bl)/65535.0 - m.Mean[2]) / m.Std[2]
		}
	}
}

// centreSquare copies the largest centred square of img into a zero-origin
// RGBA. Square inputs are returned as is.
func centreSquare(img image.Image) image.Image {
	b := img.Bounds()
	side := min(b.Dx(), b.Dy())
	if b.Dx() == b.Dy() {
		return img
	}
	src := image.Pt(b.Min.X+(b.Dx()-side)/2, b.Min.Y+(b.Dy()-side)/2)
	out := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(out, out.Bounds(), img, src, draw.Src)
	return out
}
