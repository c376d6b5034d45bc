package main

import "fmt"

// PlanningError 金字塔规划失败, 输入范围或分辨率不可用
type PlanningError struct {
	Reason string
}

func (e *PlanningError) Error() string {
	return "planning: " + e.Reason
}

// ZoomRange 金字塔级别范围
type ZoomRange struct {
	Min, Max int
}

// TileRange 单个级别内与栅格范围相交的瓦片矩形, 已裁剪到世界范围
// 裁剪后允许为空(栅格整体落在世界范围之外)
type TileRange struct {
	Zoom                       int
	MinTX, MinTY, MaxTX, MaxTY int
}

// Empty 范围是否不含任何瓦片
func (r TileRange) Empty() bool {
	return r.MaxTX < r.MinTX || r.MaxTY < r.MinTY
}

// Count 范围内的瓦片数
func (r TileRange) Count() int64 {
	if r.Empty() {
		return 0
	}
	return int64(r.MaxTX-r.MinTX+1) * int64(r.MaxTY-r.MinTY+1)
}

// Contains 瓦片是否落入范围
func (r TileRange) Contains(tx, ty int) bool {
	return tx >= r.MinTX && tx <= r.MaxTX && ty >= r.MinTY && ty <= r.MaxTY
}

// Pyramid 一次规划的结果: 级别范围和每级别的瓦片矩形
// 规划完成后不再变化
type Pyramid struct {
	Merc   Mercator
	Bounds Bounds
	Zooms  ZoomRange
	Ranges map[int]TileRange
}

// PlanPyramid 由栅格的投影范围/原生分辨率/像素尺寸推算级别范围,
// 并为每个级别生成覆盖栅格的瓦片矩形
func PlanPyramid(m Mercator, bounds Bounds, pixelSize float64, rasterW, rasterH int) (*Pyramid, error) {
	if pixelSize <= 0 {
		return nil, &PlanningError{Reason: fmt.Sprintf("invalid pixel size %f", pixelSize)}
	}
	if rasterW <= 0 || rasterH <= 0 {
		return nil, &PlanningError{Reason: fmt.Sprintf("invalid raster size %dx%d", rasterW, rasterH)}
	}

	longest := rasterW
	if rasterH > longest {
		longest = rasterH
	}

	// 最小级别: 栅格长边正好落进一个瓦片
	minZoom := m.ZoomForPixelSize(pixelSize * float64(longest) / float64(m.TileSize))
	// 最大级别: 分辨率最接近栅格原生分辨率
	maxZoom := m.ZoomForPixelSize(pixelSize)

	if minZoom > maxZoom {
		return nil, &PlanningError{
			Reason: fmt.Sprintf("degenerate zoom range: min %d > max %d", minZoom, maxZoom),
		}
	}

	ranges := make(map[int]TileRange, maxZoom-minZoom+1)
	for tz := minZoom; tz <= maxZoom; tz++ {
		tminx, tminy := m.MetersToTile(bounds.MinX, bounds.MinY, tz)
		tmaxx, tmaxy := m.MetersToTile(bounds.MaxX, bounds.MaxY, tz)

		// 裁剪超出世界范围(±180,±90)的瓦片
		limit := 1<<uint(tz) - 1
		tminx, tminy = maxInt(0, tminx), maxInt(0, tminy)
		tmaxx, tmaxy = minInt(limit, tmaxx), minInt(limit, tmaxy)

		ranges[tz] = TileRange{
			Zoom:  tz,
			MinTX: tminx, MinTY: tminy,
			MaxTX: tmaxx, MaxTY: tmaxy,
		}
	}

	return &Pyramid{
		Merc:   m,
		Bounds: bounds,
		Zooms:  ZoomRange{Min: minZoom, Max: maxZoom},
		Ranges: ranges,
	}, nil
}

// TotalTiles 全部级别的瓦片总数
func (p *Pyramid) TotalTiles() int64 {
	var total int64
	for _, r := range p.Ranges {
		total += r.Count()
	}
	return total
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
