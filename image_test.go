package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestPNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func writeWorldFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestOpenImageRaster(t *testing.T) {
	dir := t.TempDir()
	path := writeTestPNG(t, dir, "map.png", 4, 4)
	// 2 米像素, 左上角像素中心位于 (1, 99)
	writeWorldFile(t, filepath.Join(dir, "map.pgw"), "2\n0\n0\n-2\n1\n99\n")

	src, err := OpenImageRaster(path, TargetSRS)
	require.NoError(t, err)

	w, h := src.Size()
	assert.Equal(t, 4, w)
	assert.Equal(t, 4, h)
	assert.Equal(t, 4, src.Bands())
	assert.True(t, src.HasAlpha())
	assert.False(t, src.Paletted())

	gt := src.GeoTransform()
	assert.Equal(t, GeoTransform{0, 2, 0, 100, 0, -2}, gt)
	assert.Equal(t, Bounds{MinX: 0, MinY: 92, MaxX: 8, MaxY: 100}, gt.Bounds(w, h))

	require.NoError(t, ValidateSource(src))
}

func TestOpenImageRasterWithoutWorldFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTestPNG(t, dir, "bare.png", 2, 2)

	_, err := OpenImageRaster(path, TargetSRS)
	require.Error(t, err)
	var ierr *InputError
	require.ErrorAs(t, err, &ierr)
}

func TestOpenImageRasterMissingFile(t *testing.T) {
	_, err := OpenImageRaster(filepath.Join(t.TempDir(), "nope.png"), TargetSRS)
	var ierr *InputError
	require.ErrorAs(t, err, &ierr)
}

func TestValidateSourceRejections(t *testing.T) {
	tests := []struct {
		name string
		src  RasterSource
	}{
		{"rotated georeference", &fakeRaster{w: 4, h: 4, bands: 3, srs: TargetSRS,
			gt: GeoTransform{0, 1, 0.5, 100, 0, -1}}},
		{"non-square pixels", &fakeRaster{w: 4, h: 4, bands: 3, srs: TargetSRS,
			gt: GeoTransform{0, 1, 0, 100, 0, -2}}},
		{"unknown srs", &fakeRaster{w: 4, h: 4, bands: 3, srs: "",
			gt: GeoTransform{0, 1, 0, 100, 0, -1}}},
		{"zero bands", &fakeRaster{w: 4, h: 4, bands: 0, srs: TargetSRS,
			gt: GeoTransform{0, 1, 0, 100, 0, -1}}},
		{"not georeferenced", &fakeRaster{w: 4, h: 4, bands: 3, srs: TargetSRS,
			gt: GeoTransform{0, 1, 0, 0, 0, 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSource(tt.src)
			require.Error(t, err)
			var ierr *InputError
			assert.ErrorAs(t, err, &ierr)
		})
	}
}

func TestWorldFileTruncated(t *testing.T) {
	dir := t.TempDir()
	path := writeTestPNG(t, dir, "short.png", 2, 2)
	writeWorldFile(t, filepath.Join(dir, "short.pgw"), "2\n0\n0\n")

	_, err := OpenImageRaster(path, TargetSRS)
	require.Error(t, err)
}

func TestWorldFileFallbackWld(t *testing.T) {
	dir := t.TempDir()
	path := writeTestPNG(t, dir, "generic.png", 2, 2)
	writeWorldFile(t, filepath.Join(dir, "generic.wld"), "1\n0\n0\n-1\n0.5\n99.5\n")

	src, err := OpenImageRaster(path, TargetSRS)
	require.NoError(t, err)
	assert.Equal(t, GeoTransform{0, 1, 0, 100, 0, -1}, src.GeoTransform())
}

func TestImageRasterRead(t *testing.T) {
	dir := t.TempDir()
	path := writeTestPNG(t, dir, "read.png", 8, 8)
	writeWorldFile(t, filepath.Join(dir, "read.pgw"), "1\n0\n0\n-1\n0.5\n99.5\n")

	src, err := OpenImageRaster(path, TargetSRS)
	require.NoError(t, err)

	out, err := src.Read(Window{X: 0, Y: 0, XSize: 4, YSize: 4}, 16, 16)
	require.NoError(t, err)
	assert.Equal(t, 16, out.Bounds().Dx())
	assert.Equal(t, 16, out.Bounds().Dy())
	assert.Equal(t, color.NRGBA{R: 200, G: 100, B: 50, A: 255}, out.NRGBAAt(8, 8))
}
