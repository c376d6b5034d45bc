package main

import "fmt"

// TileSize 默认瓦片大小
const TileSize = 256

// Constants representing TileFormat types
const (
	PNG  string = "png"
	JPEG        = "jpeg"
	TIFF        = "tiff"
)

// Bounds 投影米制范围
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width 范围宽度(米)
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height 范围高度(米)
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// TileIndex TMS 瓦片编号, (0,0) 在世界左下角
type TileIndex struct {
	TX, TY, Zoom int
}

func (t TileIndex) String() string {
	return fmt.Sprintf("%d/%d/%d", t.Zoom, t.TX, t.TY)
}

// FlipY 返回谷歌(XYZ)约定下的行号
func (t TileIndex) FlipY() int {
	return (1 << uint(t.Zoom)) - 1 - t.TY
}

// TileTask 单个瓦片的渲染任务, 创建后不可变
// 任务交给执行器后归执行器所有, 规划器不再持有
type TileTask struct {
	ID         string
	Tile       TileIndex
	SourceFile string
	OutputFile string
	TileSize   int
	Bands      int
	Format     string
}
