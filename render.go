package main

import (
	"bytes"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/tiff"
)

// TileRenderer 瓦片任务执行器边界
// 规划器把任务交出后即不再关心, 重试和失败上报都是执行器的事
type TileRenderer interface {
	Render(t TileTask) error
}

// Renderer 进程内参考执行器: 计算窗口, 读取重采样, 编码落地
type Renderer struct {
	Source RasterSource
	Merc   Mercator
	Store  TileStore
}

func (r *Renderer) Render(t TileTask) error {
	img, err := RenderTile(r.Source, r.Merc, t.Tile, t.TileSize)
	if err != nil {
		return err
	}
	data, err := EncodeTile(img, t.Format)
	if err != nil {
		return err
	}
	return r.Store.Save(t.Tile, data)
}

// RenderTile 渲染一张瓦片: 源窗口重采样后写入瓦片缓冲的目标窗口
// 窗口退化时返回全透明的空瓦片
func RenderTile(src RasterSource, m Mercator, ti TileIndex, tileSize int) (*image.NRGBA, error) {
	tile := image.NewNRGBA(image.Rect(0, 0, tileSize, tileSize))

	b := m.TileBounds(ti.TX, ti.TY, ti.Zoom)
	rasterW, rasterH := src.Size()
	gt := src.GeoTransform()

	srcWin, dstWin := GeoQuery(gt, rasterW, rasterH, b)
	if srcWin.Empty() || dstWin.Empty() {
		return tile, nil
	}

	// 目标窗口以原生像素为单位, 换算到瓦片像素
	fullW := int(b.Width()/gt.PixelWidth() + 0.5)
	fullH := int(-b.Height()/gt.PixelHeight() + 0.5)
	if fullW <= 0 || fullH <= 0 {
		return tile, nil
	}
	sx := float64(tileSize) / float64(fullW)
	sy := float64(tileSize) / float64(fullH)
	rect := image.Rect(
		int(float64(dstWin.X)*sx+0.5),
		int(float64(dstWin.Y)*sy+0.5),
		int(float64(dstWin.X+dstWin.XSize)*sx+0.5),
		int(float64(dstWin.Y+dstWin.YSize)*sy+0.5),
	)
	if rect.Empty() {
		return tile, nil
	}

	patch, err := src.Read(srcWin, rect.Dx(), rect.Dy())
	if err != nil {
		return nil, err
	}
	if nodata := src.NoData(); len(nodata) > 0 {
		applyNoData(patch, nodata)
	}
	draw.Draw(tile, rect, patch, image.Point{}, draw.Src)
	return tile, nil
}

// applyNoData 把等于 nodata 的像素打成透明
// 单个 nodata 值适用于所有波段, 多个值按 R/G/B 顺序取前三个
func applyNoData(img *image.NRGBA, nodata []float64) {
	var nr, ng, nb uint8
	if len(nodata) >= 3 {
		nr, ng, nb = uint8(nodata[0]), uint8(nodata[1]), uint8(nodata[2])
	} else {
		v := uint8(nodata[0])
		nr, ng, nb = v, v, v
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			if c.R == nr && c.G == ng && c.B == nb {
				c.A = 0
				img.SetNRGBA(x, y, c)
			}
		}
	}
}

// EncodeTile 按输出格式编码瓦片
func EncodeTile(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case PNG:
		err = png.Encode(&buf, img)
	case JPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	case TIFF:
		err = tiff.Encode(&buf, img, nil)
	default:
		return nil, inputErrorf("unsupported output format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
