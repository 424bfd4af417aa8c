package ffmpeg

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatFrame(value uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.SetGray(x, y, color.Gray{Y: value})
		}
	}
	return img
}

func checkerboardFrame() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if (x+y)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

func TestLaplacianVarianceFlatIsZero(t *testing.T) {
	assert.Equal(t, 0.0, laplacianVariance(flatFrame(128)))
}

func TestLaplacianVarianceRanksEdgesAboveFlat(t *testing.T) {
	flat := laplacianVariance(flatFrame(128))
	sharp := laplacianVariance(checkerboardFrame())
	assert.Greater(t, sharp, flat)
}

func TestLaplacianVarianceTinyImage(t *testing.T) {
	assert.Equal(t, 0.0, laplacianVariance(image.NewGray(image.Rect(0, 0, 2, 2))))
}

func TestPickSharpestSelectsTheOnlySharpFrame(t *testing.T) {
	samples := []image.Image{
		flatFrame(10),
		flatFrame(200),
		checkerboardFrame(),
		flatFrame(128),
	}
	assert.Equal(t, 2, pickSharpest(samples))
}

func TestPickSharpestTieGoesToFirstSample(t *testing.T) {
	samples := []image.Image{
		flatFrame(50),
		checkerboardFrame(),
		checkerboardFrame(),
	}
	assert.Equal(t, 1, pickSharpest(samples))
}

func TestPickSharpestEmpty(t *testing.T) {
	assert.Equal(t, -1, pickSharpest(nil))
}

func TestToGrayPreservesBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(4, 4, 20, 24))
	gray := toGray(src)
	require.Equal(t, src.Bounds(), gray.Bounds())
}
