package main

import "math"

// EarthRadius 地球半径(米)
const EarthRadius = 6378137.0

// OriginShift 投影原点偏移, 即半个赤道周长
const OriginShift = math.Pi * EarthRadius

// MaxZoomLevel 金字塔最大级别
const MaxZoomLevel = 32

// Mercator TMS 全球墨卡托金字塔 (EPSG:3857)
// 像素和瓦片坐标都采用 TMS 约定, 原点在左下角
type Mercator struct {
	TileSize   int
	initialRes float64
}

// NewMercator 创建指定瓦片尺寸的墨卡托金字塔
func NewMercator(tileSize int) Mercator {
	if tileSize <= 0 {
		tileSize = TileSize
	}
	return Mercator{
		TileSize:   tileSize,
		initialRes: 2 * OriginShift / float64(tileSize),
	}
}

// LatLonToMeters 将 WGS84 经纬度转换为投影米制坐标
func (m Mercator) LatLonToMeters(lat, lon float64) (mx, my float64) {
	mx = lon * OriginShift / 180.0
	my = math.Log(math.Tan((90+lat)*math.Pi/360.0)) / (math.Pi / 180.0)
	my = my * OriginShift / 180.0
	return mx, my
}

// MetersToLatLon 将投影米制坐标转换为 WGS84 经纬度
func (m Mercator) MetersToLatLon(mx, my float64) (lat, lon float64) {
	lon = (mx / OriginShift) * 180.0
	lat = (my / OriginShift) * 180.0
	lat = 180 / math.Pi * (2*math.Atan(math.Exp(lat*math.Pi/180.0)) - math.Pi/2.0)
	return lat, lon
}

// Resolution 指定级别的分辨率(米/像素, 赤道处)
func (m Mercator) Resolution(zoom int) float64 {
	return m.initialRes / math.Pow(2, float64(zoom))
}

// ZoomForPixelSize 返回不低于给定像素大小的最大级别
// 比最低级别还粗的栅格不放大, 直接返回 0
func (m Mercator) ZoomForPixelSize(pixelSize float64) int {
	for i := 0; i < MaxZoomLevel; i++ {
		if pixelSize > m.Resolution(i) {
			if i != 0 {
				return i - 1
			}
			return 0
		}
	}
	return MaxZoomLevel - 1
}

// PixelsToMeters 将指定级别的金字塔像素坐标转换为投影米制坐标
func (m Mercator) PixelsToMeters(px, py float64, zoom int) (mx, my float64) {
	res := m.Resolution(zoom)
	mx = px*res - OriginShift
	my = py*res - OriginShift
	return mx, my
}

// MetersToPixels 将投影米制坐标转换为指定级别的金字塔像素坐标
func (m Mercator) MetersToPixels(mx, my float64, zoom int) (px, py float64) {
	res := m.Resolution(zoom)
	px = (mx + OriginShift) / res
	py = (my + OriginShift) / res
	return px, py
}

// PixelsToTile 返回覆盖给定像素坐标的瓦片
// 正好落在边界上的像素归属到以其为远端边界的瓦片
func (m Mercator) PixelsToTile(px, py float64) (tx, ty int) {
	tx = int(math.Ceil(px/float64(m.TileSize))) - 1
	ty = int(math.Ceil(py/float64(m.TileSize))) - 1
	return tx, ty
}

// PixelsToRaster 将像素坐标原点移到左上角(栅格约定)
func (m Mercator) PixelsToRaster(px, py float64, zoom int) (float64, float64) {
	mapSize := float64(m.TileSize << uint(zoom))
	return px, mapSize - py
}

// MetersToTile 返回覆盖给定米制坐标的瓦片
func (m Mercator) MetersToTile(mx, my float64, zoom int) (tx, ty int) {
	px, py := m.MetersToPixels(mx, my, zoom)
	return m.PixelsToTile(px, py)
}

// TileBounds 返回瓦片的投影米制范围
func (m Mercator) TileBounds(tx, ty, zoom int) Bounds {
	minx, miny := m.PixelsToMeters(float64(tx*m.TileSize), float64(ty*m.TileSize), zoom)
	maxx, maxy := m.PixelsToMeters(float64((tx+1)*m.TileSize), float64((ty+1)*m.TileSize), zoom)
	return Bounds{MinX: minx, MinY: miny, MaxX: maxx, MaxY: maxy}
}

// TileLatLonBounds 返回瓦片的 WGS84 经纬度范围
func (m Mercator) TileLatLonBounds(tx, ty, zoom int) (minLat, minLon, maxLat, maxLon float64) {
	b := m.TileBounds(tx, ty, zoom)
	minLat, minLon = m.MetersToLatLon(b.MinX, b.MinY)
	maxLat, maxLon = m.MetersToLatLon(b.MaxX, b.MaxY)
	return minLat, minLon, maxLat, maxLon
}
