package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// TileStore 瓦片产出的落地端, 同时负责续传时的存在性判断
// 已存在的产出不做完整性校验, 写了一半的文件也算存在
type TileStore interface {
	// Path 瓦片的规范输出路径, 跨次运行必须稳定
	Path(t TileIndex) string
	// Exists 规范路径下是否已有产出
	Exists(t TileIndex) bool
	// Save 写入编码后的瓦片数据
	Save(t TileIndex, data []byte) error
	Close() error
}

// fileStore 目录树落地: {root}/{zoom}/{tx}/{ty}.{format}
type fileStore struct {
	root   string
	format string
}

func newFileStore(root, format string) *fileStore {
	return &fileStore{root: root, format: format}
}

func (s *fileStore) Path(t TileIndex) string {
	return filepath.Join(
		s.root,
		strconv.Itoa(t.Zoom),
		strconv.Itoa(t.TX),
		fmt.Sprintf("%d.%s", t.TY, s.format),
	)
}

func (s *fileStore) Exists(t TileIndex) bool {
	_, err := os.Stat(s.Path(t))
	return err == nil
}

func (s *fileStore) Save(t TileIndex, data []byte) error {
	path := s.Path(t)
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	return os.WriteFile(path, data, os.ModePerm)
}

func (s *fileStore) Close() error { return nil }

// nullStore 干跑时的空落地端, 不产生任何副作用
type nullStore struct{}

func (nullStore) Path(t TileIndex) string      { return t.String() }
func (nullStore) Exists(TileIndex) bool        { return false }
func (nullStore) Save(TileIndex, []byte) error { return nil }
func (nullStore) Close() error                 { return nil }
