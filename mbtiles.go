package main

import (
	"database/sql"
	"fmt"

	_ "github.com/shaxbee/go-spatialite"
)

const mbtilesSchema = `
CREATE TABLE IF NOT EXISTS metadata (name TEXT, value TEXT);
CREATE TABLE IF NOT EXISTS tiles (
	zoom_level INTEGER,
	tile_column INTEGER,
	tile_row INTEGER,
	tile_data BLOB
);
CREATE UNIQUE INDEX IF NOT EXISTS tile_index ON tiles (zoom_level, tile_column, tile_row);
`

// mbtilesStore MBTiles(sqlite) 落地端
// mbtiles 的行号本身就是 TMS 约定, 瓦片编号不需要翻转
type mbtilesStore struct {
	db   *sql.DB
	file string
}

// OpenMBTiles 打开(或创建) mbtiles 文件并保证表结构存在
func OpenMBTiles(path string) (*mbtilesStore, error) {
	return openMBTiles("spatialite", path, true)
}

// openMBTiles 以指定驱动打开 mbtiles
// writable 为 false 时不执行建表语句, 只读场景(模拟运行)不落一个字节
func openMBTiles(driver, path string, writable bool) (*mbtilesStore, error) {
	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, inputErrorf("cannot open mbtiles %s: %v", path, err)
	}
	if writable {
		if _, err := db.Exec(mbtilesSchema); err != nil {
			db.Close()
			return nil, inputErrorf("cannot initialize mbtiles %s: %v", path, err)
		}
	}
	return &mbtilesStore{db: db, file: path}, nil
}

// WriteMetadata 写入 mbtiles 元数据表
func (s *mbtilesStore) WriteMetadata(name, format string, p *Pyramid) error {
	minLat, minLon := p.Merc.MetersToLatLon(p.Bounds.MinX, p.Bounds.MinY)
	maxLat, maxLon := p.Merc.MetersToLatLon(p.Bounds.MaxX, p.Bounds.MaxY)
	meta := [][2]string{
		{"name", name},
		{"type", "baselayer"},
		{"version", "1"},
		{"format", format},
		{"bounds", fmt.Sprintf("%f,%f,%f,%f", minLon, minLat, maxLon, maxLat)},
		{"minzoom", fmt.Sprintf("%d", p.Zooms.Min)},
		{"maxzoom", fmt.Sprintf("%d", p.Zooms.Max)},
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for _, kv := range meta {
		if _, err := tx.Exec("INSERT INTO metadata (name, value) VALUES (?, ?)", kv[0], kv[1]); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *mbtilesStore) Path(t TileIndex) string {
	return fmt.Sprintf("%s:%s", s.file, t)
}

func (s *mbtilesStore) Exists(t TileIndex) bool {
	var one int
	err := s.db.QueryRow(
		"SELECT 1 FROM tiles WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?",
		t.Zoom, t.TX, t.TY,
	).Scan(&one)
	return err == nil
}

func (s *mbtilesStore) Save(t TileIndex, data []byte) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO tiles (zoom_level, tile_column, tile_row, tile_data) VALUES (?, ?, ?, ?)",
		t.Zoom, t.TX, t.TY, data,
	)
	return err
}

func (s *mbtilesStore) Close() error { return s.db.Close() }
