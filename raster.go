package main

import (
	"fmt"
	"image"
	"math"
)

// TargetSRS 瓦片输出固定使用球面墨卡托
const TargetSRS = "EPSG:3857"

// InputError 输入数据不可用, 在任何瓦片工作开始前报告
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return "input: " + e.Reason
}

func inputErrorf(format string, args ...interface{}) error {
	return &InputError{Reason: fmt.Sprintf(format, args...)}
}

// GeoTransform 仿射地理参考
// (originX, pixelWidth, rotX, originY, rotY, pixelHeight)
type GeoTransform [6]float64

// PixelWidth 像素宽度(米)
func (gt GeoTransform) PixelWidth() float64 { return gt[1] }

// PixelHeight 像素高度(米), 北上的栅格为负值
func (gt GeoTransform) PixelHeight() float64 { return gt[5] }

// IsGeoreferenced 是否携带有效的地理参考(非单位变换)
func (gt GeoTransform) IsGeoreferenced() bool {
	return gt != GeoTransform{0.0, 1.0, 0.0, 0.0, 0.0, 1.0} && gt != GeoTransform{}
}

// HasRotation 地理参考是否含旋转或切变项
func (gt GeoTransform) HasRotation() bool {
	return gt[2] != 0 || gt[4] != 0
}

// Bounds 栅格在投影坐标下的范围
func (gt GeoTransform) Bounds(rasterW, rasterH int) Bounds {
	return Bounds{
		MinX: gt[0],
		MaxX: gt[0] + float64(rasterW)*gt[1],
		MaxY: gt[3],
		MinY: gt[3] + float64(rasterH)*gt[5],
	}
}

// RasterSource 栅格数据源, 打开/解码/读取由外部协作方负责
type RasterSource interface {
	// File 数据源文件路径
	File() string
	// Size 像素尺寸
	Size() (w, h int)
	// Bands 波段数
	Bands() int
	// GeoTransform 地理参考
	GeoTransform() GeoTransform
	// SRS 源空间参考系
	SRS() string
	// Paletted 波段1是否带调色板
	Paletted() bool
	// HasAlpha 是否自带透明波段
	HasAlpha() bool
	// NoData 各波段的 nodata 值, 无则为空
	NoData() []float64
	// Read 读取 src 窗口并重采样为 outW×outH 的 RGBA 图像
	Read(src Window, outW, outH int) (*image.NRGBA, error)
}

// ValidateSource 在规划前校验输入栅格, 全部失败都是致命的
func ValidateSource(src RasterSource) error {
	gt := src.GeoTransform()
	if !gt.IsGeoreferenced() {
		return inputErrorf("file %s is not georeferenced", src.File())
	}
	if src.Bands() == 0 {
		return inputErrorf("file %s has no raster band", src.File())
	}
	if src.Paletted() {
		return inputErrorf("file %s is paletted, convert it to RGB/RGBA first", src.File())
	}
	if src.SRS() == "" {
		return inputErrorf("file %s has unknown SRS, provide a source reference system", src.File())
	}
	if gt.HasRotation() {
		return inputErrorf("georeference of %s contains rotation or skew, such raster is not supported", src.File())
	}
	if math.Abs(gt.PixelWidth()) != math.Abs(gt.PixelHeight()) {
		return inputErrorf("file %s has non-square pixels (%f x %f)", src.File(), gt.PixelWidth(), gt.PixelHeight())
	}
	return nil
}

// DataBands 不含透明波段的数据波段数
func DataBands(src RasterSource) int {
	if src.HasAlpha() {
		return src.Bands() - 1
	}
	return src.Bands()
}
