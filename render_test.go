package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// solidRaster 读取窗口时返回纯色
type solidRaster struct {
	fakeRaster
	fill color.NRGBA
}

func (r *solidRaster) Read(src Window, outW, outH int) (*image.NRGBA, error) {
	out := image.NewNRGBA(image.Rect(0, 0, outW, outH))
	for y := 0; y < outH; y++ {
		for x := 0; x < outW; x++ {
			out.SetNRGBA(x, y, r.fill)
		}
	}
	return out, nil
}

// worldRaster 覆盖整个世界的 256x256 栅格
func worldRaster(fill color.NRGBA) *solidRaster {
	m := NewMercator(256)
	res := m.Resolution(0)
	return &solidRaster{
		fakeRaster: fakeRaster{
			w: 256, h: 256, bands: 3, srs: TargetSRS,
			gt: GeoTransform{-OriginShift, res, 0, OriginShift, 0, -res},
		},
		fill: fill,
	}
}

func TestRenderTileFullCoverage(t *testing.T) {
	m := NewMercator(256)
	red := color.NRGBA{R: 255, A: 255}

	tile, err := RenderTile(worldRaster(red), m, TileIndex{TX: 0, TY: 0, Zoom: 0}, 256)
	require.NoError(t, err)

	assert.Equal(t, red, tile.NRGBAAt(0, 0))
	assert.Equal(t, red, tile.NRGBAAt(128, 128))
	assert.Equal(t, red, tile.NRGBAAt(255, 255))
}

func TestRenderTileOutsideRasterIsTransparent(t *testing.T) {
	m := NewMercator(256)
	// 栅格只覆盖西南世界的一个角落
	res := m.Resolution(2)
	src := &solidRaster{
		fakeRaster: fakeRaster{
			w: 256, h: 256, bands: 3, srs: TargetSRS,
			gt: GeoTransform{-OriginShift, res, 0, -OriginShift + 256*res, 0, -res},
		},
		fill: color.NRGBA{G: 255, A: 255},
	}

	// 东北角的瓦片完全在栅格之外: 空瓦片而不是错误
	tile, err := RenderTile(src, m, TileIndex{TX: 3, TY: 3, Zoom: 2}, 256)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{}, tile.NRGBAAt(128, 128))
}

func TestRenderTileNoDataTransparent(t *testing.T) {
	m := NewMercator(256)
	fill := color.NRGBA{R: 10, G: 20, B: 30, A: 255}

	src := worldRaster(fill)
	src.nodata = []float64{10, 20, 30}
	tile, err := RenderTile(src, m, TileIndex{TX: 0, TY: 0, Zoom: 0}, 256)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), tile.NRGBAAt(128, 128).A)

	// nodata 不匹配时像素不受影响
	src = worldRaster(fill)
	src.nodata = []float64{1, 2, 3}
	tile, err = RenderTile(src, m, TileIndex{TX: 0, TY: 0, Zoom: 0}, 256)
	require.NoError(t, err)
	assert.Equal(t, fill, tile.NRGBAAt(128, 128))

	// 单值 nodata 对全部波段生效
	src = worldRaster(color.NRGBA{R: 42, G: 42, B: 42, A: 255})
	src.nodata = []float64{42}
	tile, err = RenderTile(src, m, TileIndex{TX: 0, TY: 0, Zoom: 0}, 256)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), tile.NRGBAAt(200, 200).A)
}

func TestRenderTilePartialCoverage(t *testing.T) {
	m := NewMercator(256)
	res := m.Resolution(2)
	fill := color.NRGBA{B: 255, A: 255}
	src := &solidRaster{
		fakeRaster: fakeRaster{
			w: 256, h: 256, bands: 3, srs: TargetSRS,
			gt: GeoTransform{-OriginShift, res, 0, -OriginShift + 256*res, 0, -res},
		},
		fill: fill,
	}

	// 覆盖的那块瓦片整体着色
	tile, err := RenderTile(src, m, TileIndex{TX: 0, TY: 0, Zoom: 2}, 256)
	require.NoError(t, err)
	assert.Equal(t, fill, tile.NRGBAAt(128, 128))
}

func TestEncodeTile(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))

	for _, format := range []string{PNG, JPEG, TIFF} {
		data, err := EncodeTile(img, format)
		require.NoError(t, err, format)
		assert.NotEmpty(t, data, format)
	}

	data, err := EncodeTile(img, PNG)
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 8, decoded.Bounds().Dx())

	_, err = EncodeTile(img, "gif")
	require.Error(t, err)
	var ierr *InputError
	assert.ErrorAs(t, err, &ierr)
}
