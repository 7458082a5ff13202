package model

import (
	"image"
	"image/color"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testMetadata(size int) Metadata {
	return Metadata{
		ImageSize: size,
		CropPct:   0.875,
		Mean:      []float32{0.485, 0.456, 0.406},
		Std:       []float32{0.229, 0.224, 0.225},
	}
}

func TestPreprocessUniformImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{R: 255, G: 0, B: 128, A: 255})
		}
	}

	m := testMetadata(8)
	dst := make([]float32, 3*8*8)
	Preprocess(img, m, dst)

	plane := 64
	wantR := (1 - m.Mean[0]) / m.Std[0]
	wantG := (0 - m.Mean[1]) / m.Std[1]
	wantB := (float32(128*257)/65535 - m.Mean[2]) / m.Std[2]
	for i := 0; i < plane; i++ {
		assert.InDelta(t, wantR, dst[i], 1e-2)
		assert.InDelta(t, wantG, dst[plane+i], 1e-2)
		assert.InDelta(t, wantB, dst[2*plane+i], 1e-2)
	}
}

func TestPreprocessCentreCrop(t *testing.T) {
	// Left half black, right half white: after a centre crop of a wide
	// image both halves still appear in the crop.
	img := image.NewRGBA(image.Rect(0, 0, 64, 16))
	for y := 0; y < 16; y++ {
		for x := 32; x < 64; x++ {
			img.Set(x, y, color.White)
		}
	}

	m := testMetadata(8)
	m.Mean = []float32{0, 0, 0}
	m.Std = []float32{1, 1, 1}
	m.CropPct = 1
	dst := make([]float32, 3*8*8)
	Preprocess(img, m, dst)

	assert.InDelta(t, 0, dst[0], 0.1)
	assert.InDelta(t, 1, dst[7], 0.1)
}

func TestPreprocessExtremeAspectRatio(t *testing.T) {
	// A 200000x1 strip scaled on its short edge alone would need a
	// 51200000x256 intermediate raster.
	const width = 200_000
	img := image.NewRGBA(image.Rect(0, 0, width, 1))
	for x := 0; x < width; x++ {
		img.Set(x, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}

	m := testMetadata(224)
	m.Mean = []float32{0, 0, 0}
	m.Std = []float32{1, 1, 1}
	dst := make([]float32, 3*224*224)

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	Preprocess(img, m, dst)
	runtime.ReadMemStats(&after)

	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(32<<20))
	assert.InDelta(t, 1, dst[0], 0.05)
	assert.InDelta(t, 1, dst[len(dst)-1], 0.05)
}

func TestPreprocessTallImage(t *testing.T) {
	// Top half black, bottom half white.
	img := image.NewRGBA(image.Rect(0, 0, 16, 64))
	for y := 32; y < 64; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.White)
		}
	}

	m := testMetadata(8)
	m.Mean = []float32{0, 0, 0}
	m.Std = []float32{1, 1, 1}
	m.CropPct = 1
	dst := make([]float32, 3*8*8)
	Preprocess(img, m, dst)

	assert.InDelta(t, 0, dst[0], 0.1)
	assert.InDelta(t, 1, dst[7*8], 0.1)
}
