package main

import (
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
	"github.com/paulmach/orb/maptile/tilecover"
)

// RegionFilter 限定枚举范围的 GeoJSON 区域
// 区域覆盖集按级别懒生成, 规划器单线程访问
type RegionFilter struct {
	collection orb.Collection
	covers     map[int]maptile.Set
}

// LoadRegionFilter 从 GeoJSON FeatureCollection 加载过滤区域
func LoadRegionFilter(path string) (*RegionFilter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, inputErrorf("unable to read region file %s: %v", path, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, inputErrorf("unable to unmarshal region file %s: %v", path, err)
	}

	var collection orb.Collection
	for _, f := range fc.Features {
		collection = append(collection, f.Geometry)
	}
	if len(collection) == 0 {
		return nil, inputErrorf("region file %s has no feature", path)
	}

	return &RegionFilter{
		collection: collection,
		covers:     make(map[int]maptile.Set),
	}, nil
}

// Covers 瓦片是否与区域相交
// tilecover 使用谷歌(XYZ)行号, TMS 瓦片在这里翻转一次
func (r *RegionFilter) Covers(t TileIndex) bool {
	set, ok := r.covers[t.Zoom]
	if !ok {
		set = tilecover.Collection(r.collection, maptile.Zoom(t.Zoom))
		r.covers[t.Zoom] = set
	}
	return set[maptile.New(uint32(t.TX), uint32(t.FlipY()), maptile.Zoom(t.Zoom))]
}
