package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanPyramidSmallRaster(t *testing.T) {
	m := NewMercator(256)

	// 边长 2000 米的栅格, 分辨率取在 2 级附近: 恰好一个级别
	p, err := PlanPyramid(m, Bounds{MinX: -1000, MinY: -1000, MaxX: 1000, MaxY: 1000}, 30000, 256, 256)
	require.NoError(t, err)

	assert.Equal(t, 2, p.Zooms.Min)
	assert.Equal(t, 2, p.Zooms.Max)
	require.Len(t, p.Ranges, 1)

	// 范围横跨世界中心, 四块相邻瓦片
	r := p.Ranges[2]
	assert.False(t, r.Empty())
	assert.True(t, r.Contains(1, 1))
	assert.True(t, r.Contains(2, 2))
	assert.Equal(t, int64(4), r.Count())
	assert.Equal(t, int64(4), p.TotalTiles())
}

func TestPlanPyramidClampsToWorld(t *testing.T) {
	m := NewMercator(256)

	// 范围超出世界边界(±20037508m), 每个级别都要被裁剪回去
	bounds := Bounds{MinX: -3e7, MinY: -3e7, MaxX: 3e7, MaxY: 3e7}
	p, err := PlanPyramid(m, bounds, m.Resolution(3), 2048, 2048)
	require.NoError(t, err)

	assert.Equal(t, 0, p.Zooms.Min)
	assert.Equal(t, 3, p.Zooms.Max)
	for z := p.Zooms.Min; z <= p.Zooms.Max; z++ {
		r := p.Ranges[z]
		limit := 1<<uint(z) - 1
		assert.Equal(t, 0, r.MinTX, "zoom %d", z)
		assert.Equal(t, 0, r.MinTY, "zoom %d", z)
		assert.Equal(t, limit, r.MaxTX, "zoom %d", z)
		assert.Equal(t, limit, r.MaxTY, "zoom %d", z)
	}
}

func TestPlanPyramidOutsideWorldIsEmptyRange(t *testing.T) {
	m := NewMercator(256)

	// 栅格整体落在世界范围之外: 范围为空但不是错误
	bounds := Bounds{MinX: 2.1e7, MinY: 1000, MaxX: 2.2e7, MaxY: 2000}
	p, err := PlanPyramid(m, bounds, 30000, 256, 256)
	require.NoError(t, err)

	r := p.Ranges[2]
	assert.True(t, r.Empty())
	assert.Equal(t, int64(0), r.Count())
	assert.Equal(t, int64(0), p.TotalTiles())
}

func TestPlanPyramidDegenerateZoomRange(t *testing.T) {
	m := NewMercator(256)

	// 栅格比单个瓦片还小: 最小级别跑到最大级别之上, 必须显式失败
	_, err := PlanPyramid(m, Bounds{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}, m.Resolution(5), 16, 16)
	require.Error(t, err)
	var perr *PlanningError
	require.ErrorAs(t, err, &perr)
}

func TestPlanPyramidRejectsBadInput(t *testing.T) {
	m := NewMercator(256)

	_, err := PlanPyramid(m, Bounds{}, 0, 256, 256)
	assert.Error(t, err)
	_, err = PlanPyramid(m, Bounds{}, 10, 0, 256)
	assert.Error(t, err)
}

func TestTileRangeContains(t *testing.T) {
	r := TileRange{Zoom: 3, MinTX: 1, MinTY: 2, MaxTX: 4, MaxTY: 5}
	assert.True(t, r.Contains(1, 2))
	assert.True(t, r.Contains(4, 5))
	assert.False(t, r.Contains(0, 2))
	assert.False(t, r.Contains(5, 5))
	assert.Equal(t, int64(16), r.Count())
}
