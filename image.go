package main

import (
	"bufio"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	// 注册解码器
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

// imageRaster 以"图片 + world file"形式实现的栅格数据源
// 地理参考从同名的 world file (.pgw/.jgw/.tfw/.wld) 读取
type imageRaster struct {
	file  string
	img   image.Image
	gt    GeoTransform
	srs   string
	bands int
}

// OpenImageRaster 打开图片栅格, srs 为其空间参考系(图片文件自身不携带)
func OpenImageRaster(path, srs string) (RasterSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, inputErrorf("cannot open input file %s: %v", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, inputErrorf("cannot decode input file %s: %v", path, err)
	}

	gt, err := readWorldFile(path)
	if err != nil {
		return nil, err
	}

	return &imageRaster{
		file:  path,
		img:   img,
		gt:    gt,
		srs:   srs,
		bands: bandsOf(img),
	}, nil
}

func (r *imageRaster) File() string { return r.file }

func (r *imageRaster) Size() (int, int) {
	b := r.img.Bounds()
	return b.Dx(), b.Dy()
}

func (r *imageRaster) Bands() int { return r.bands }

func (r *imageRaster) GeoTransform() GeoTransform { return r.gt }

func (r *imageRaster) SRS() string { return r.srs }

func (r *imageRaster) Paletted() bool {
	_, ok := r.img.(*image.Paletted)
	return ok
}

func (r *imageRaster) HasAlpha() bool {
	return r.bands == 4 || r.bands == 2
}

// NoData 图片栅格不携带 nodata, 透明度直接来自 alpha
func (r *imageRaster) NoData() []float64 { return nil }

// Read 最近邻读取窗口并缩放到目标尺寸
func (r *imageRaster) Read(src Window, outW, outH int) (*image.NRGBA, error) {
	out := image.NewNRGBA(image.Rect(0, 0, outW, outH))
	if src.Empty() || outW <= 0 || outH <= 0 {
		return out, nil
	}
	origin := r.img.Bounds().Min
	rect := image.Rect(
		origin.X+src.X, origin.Y+src.Y,
		origin.X+src.X+src.XSize, origin.Y+src.Y+src.YSize,
	)
	xdraw.NearestNeighbor.Scale(out, out.Bounds(), r.img, rect, xdraw.Src, nil)
	return out, nil
}

func bandsOf(img image.Image) int {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	case *image.NRGBA, *image.NRGBA64, *image.RGBA, *image.RGBA64:
		return 4
	default:
		return 3
	}
}

// worldFileFor 返回候选 world file 路径, 按扩展名约定排序
func worldFileFor(path string) []string {
	ext := strings.ToLower(filepath.Ext(path))
	base := strings.TrimSuffix(path, filepath.Ext(path))
	sidecars := map[string]string{
		".png":  ".pgw",
		".jpg":  ".jgw",
		".jpeg": ".jgw",
		".tif":  ".tfw",
		".tiff": ".tfw",
	}
	var candidates []string
	if s, ok := sidecars[ext]; ok {
		candidates = append(candidates, base+s)
	}
	return append(candidates, base+".wld")
}

// readWorldFile 读取 world file 的 6 个系数并换算为地理参考
// world file 给出的是左上角像素中心, 地理参考原点是左上角像素角点
func readWorldFile(path string) (GeoTransform, error) {
	var gt GeoTransform
	for _, wf := range worldFileFor(path) {
		f, err := os.Open(wf)
		if err != nil {
			continue
		}
		defer f.Close()

		var v [6]float64
		scanner := bufio.NewScanner(f)
		for i := 0; i < 6; i++ {
			if !scanner.Scan() {
				return gt, inputErrorf("world file %s is truncated", wf)
			}
			v[i], err = strconv.ParseFloat(strings.TrimSpace(scanner.Text()), 64)
			if err != nil {
				return gt, inputErrorf("world file %s line %d: %v", wf, i+1, err)
			}
		}
		// 行序: A(像素宽) D(旋转) B(旋转) E(像素高,负) C(中心x) F(中心y)
		gt[0] = v[4] - v[0]/2
		gt[1] = v[0]
		gt[2] = v[2]
		gt[3] = v[5] - v[3]/2
		gt[4] = v[1]
		gt[5] = v[3]
		return gt, nil
	}
	return gt, inputErrorf("file %s is not georeferenced (no world file found)", path)
}
