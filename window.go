package main

// Window 轴对齐的像素矩形, 既用作源读取窗口也用作目标写入窗口
type Window struct {
	X, Y, XSize, YSize int
}

// Empty 窗口是否退化(无可读写区域)
// 退化窗口意味着"渲染一张空瓦片", 不是错误
func (w Window) Empty() bool {
	return w.XSize <= 0 || w.YSize <= 0
}

// GeoQuery 由瓦片的投影范围计算源栅格读取窗口和目标写入窗口
// 瓦片只与栅格部分相交时按比例收缩两个窗口,
// 收缩是近似值, 栅格边缘允许有亚像素级的接缝误差
func GeoQuery(gt GeoTransform, rasterW, rasterH int, b Bounds) (src, dst Window) {
	// 0.001 偏置抵消边界处的浮点截断
	rx := int((b.MinX-gt[0])/gt[1] + 0.001)
	ry := int((b.MaxY-gt[3])/gt[5] + 0.001)
	rxsize := int((b.MaxX-b.MinX)/gt[1] + 0.5)
	rysize := int((b.MinY-b.MaxY)/gt[5] + 0.5)

	wx, wy := 0, 0
	wxsize, wysize := rxsize, rysize

	// 窗口不能超出栅格范围
	if rxsize > 0 {
		if rx < 0 {
			rxshift := -rx
			wx = int(float64(wxsize) * (float64(rxshift) / float64(rxsize)))
			wxsize -= wx
			rxsize -= int(float64(rxsize) * (float64(rxshift) / float64(rxsize)))
			rx = 0
		}
		if rx+rxsize > rasterW {
			wxsize = int(float64(wxsize) * (float64(rasterW-rx) / float64(rxsize)))
			rxsize = rasterW - rx
		}
	}

	if rysize > 0 {
		if ry < 0 {
			ryshift := -ry
			wy = int(float64(wysize) * (float64(ryshift) / float64(rysize)))
			wysize -= wy
			rysize -= int(float64(rysize) * (float64(ryshift) / float64(rysize)))
			ry = 0
		}
		if ry+rysize > rasterH {
			wysize = int(float64(wysize) * (float64(rasterH-ry) / float64(rysize)))
			rysize = rasterH - ry
		}
	}

	src = Window{X: rx, Y: ry, XSize: rxsize, YSize: rysize}
	dst = Window{X: wx, Y: wy, XSize: wxsize, YSize: wysize}
	return src, dst
}
