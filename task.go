package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/teris-io/shortid"
	pb "gopkg.in/cheggaaa/pb.v1"
)

func InitTask() {
	start := time.Now()

	if err := runPlan(); err != nil {
		log.Errorf("%s", err)
		os.Exit(1)
	}

	secs := time.Since(start).Seconds()
	log.Printf("%.3fs finished...", secs)
}

// runPlan 校验输入, 规划金字塔并派发全部瓦片任务
func runPlan() error {
	input := conf.Input.File
	if input == "" {
		return inputErrorf("no input file configured")
	}
	format := strings.ToLower(conf.Output.Format)
	switch format {
	case PNG, JPEG, TIFF:
	default:
		return inputErrorf("the %q driver is not supported, use png/jpeg/tiff", conf.Output.Format)
	}

	src, err := OpenImageRaster(input, conf.Input.SRS)
	if err != nil {
		return err
	}
	if err := ValidateSource(src); err != nil {
		return err
	}
	if src.SRS() != TargetSRS {
		// 重投影属于外部协作方, 这里只能拒绝
		return inputErrorf("source SRS %q differs from %s and no reprojector is available, warp the input first",
			src.SRS(), TargetSRS)
	}

	w, h := src.Size()
	gt := src.GeoTransform()
	bounds := gt.Bounds(w, h)
	m := NewMercator(conf.Tile.Size)

	log.Infof("input file: %s ( %dP x %dL - %d bands)", input, w, h, src.Bands())
	minLat, minLon := m.MetersToLatLon(bounds.MinX, bounds.MinY)
	maxLat, maxLon := m.MetersToLatLon(bounds.MaxX, bounds.MaxY)
	log.Infof("bounds (meters): minX:%.3f minY:%.3f maxX:%.3f maxY:%.3f",
		bounds.MinX, bounds.MinY, bounds.MaxX, bounds.MaxY)
	log.Infof("bounds (latlon): minLat:%f minLon:%f maxLat:%f maxLon:%f",
		minLat, minLon, maxLat, maxLon)

	pyramid, err := PlanPyramid(m, bounds, gt.PixelWidth(), w, h)
	if err != nil {
		return err
	}
	log.Infof("zoom levels: %d - %d (res: %f - %f), %d tiles",
		pyramid.Zooms.Min, pyramid.Zooms.Max,
		m.Resolution(pyramid.Zooms.Min), m.Resolution(pyramid.Zooms.Max),
		pyramid.TotalTiles())

	store, err := openStore(input, format, pyramid)
	if err != nil {
		return err
	}
	defer store.Close()

	var region *RegionFilter
	if conf.Region.Geojson != "" {
		region, err = LoadRegionFilter(conf.Region.Geojson)
		if err != nil {
			return err
		}
	}

	task := NewTask(TaskOptions{
		Source:   src,
		Pyramid:  pyramid,
		Store:    store,
		Renderer: &Renderer{Source: src, Merc: m, Store: store},
		Region:   region,
		Format:   format,
		Resume:   conf.Task.Resume,
		DryRun:   conf.Task.DryRun,
		Workers:  conf.Task.Workers,
		Progress: conf.Output.OutputTerminal,
	})
	SafeExitInst.Register(task.AbortFun)

	return task.Run()
}

// openStore 打开输出落地端, 目录树或 mbtiles
// 输出已存在且未开启续传时直接拒绝, 不产生半截目录树
func openStore(input, format string, pyramid *Pyramid) (TileStore, error) {
	resume, dryRun := conf.Task.Resume, conf.Task.DryRun

	if conf.Output.MBTiles != "" {
		path := conf.Output.MBTiles
		_, statErr := os.Stat(path)
		if statErr == nil && !resume && !dryRun {
			return nil, inputErrorf("output %s already exists and resume is not enabled, aborting", path)
		}
		if dryRun && statErr != nil {
			return nullStore{}, nil
		}
		// 模拟运行只为续传计数打开既有文件, 不执行建表
		st, err := openMBTiles("spatialite", path, !dryRun)
		if err != nil {
			return nil, err
		}
		if statErr != nil {
			if err := st.WriteMetadata(filepath.Base(input), format, pyramid); err != nil {
				st.Close()
				return nil, err
			}
		}
		return st, nil
	}

	dir := conf.Output.Directory
	if dir == "" {
		dir = strings.TrimSuffix(input, filepath.Ext(input)) + ".tiles"
		log.Infof("no output specified, using %s", dir)
	}
	if _, err := os.Stat(dir); err == nil && !resume && !dryRun {
		return nil, inputErrorf("output %s already exists and resume is not enabled, aborting", dir)
	}
	if !dryRun {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, inputErrorf("cannot create output %s: %v", dir, err)
		}
	}
	return newFileStore(dir, format), nil
}

// TaskOptions 规划任务的全部输入, 任务创建后不再变化
type TaskOptions struct {
	Source   RasterSource
	Pyramid  *Pyramid
	Store    TileStore
	Renderer TileRenderer
	Region   *RegionFilter
	Format   string
	Resume   bool
	DryRun   bool
	Workers  int
	Progress bool
}

// Task 金字塔遍历任务
// 枚举本身单线程, 渲染通过 worker 池并发执行
type Task struct {
	ID      string
	Opts    TaskOptions
	Emitted int64
	Skipped int64

	tileWG    sync.WaitGroup
	abort     chan struct{}
	abortOnce sync.Once
	workers   chan struct{}
}

// NewTask 创建遍历任务
func NewTask(o TaskOptions) *Task {
	id, _ := shortid.Generate()
	if o.Workers <= 0 {
		o.Workers = 1
	}
	return &Task{
		ID:      id,
		Opts:    o,
		abort:   make(chan struct{}),
		workers: make(chan struct{}, o.Workers),
	}
}

// AbortFun 安全退出时中断遍历
func (task *Task) AbortFun() {
	task.abortOnce.Do(func() { close(task.abort) })
}

// Run 按级别从细到粗遍历金字塔并派发任务
// 细节级别最先派发, 执行端可以尽早开始最贵的渲染
func (task *Task) Run() error {
	p := task.Opts.Pyramid
	for tz := p.Zooms.Max; tz >= p.Zooms.Min; tz-- {
		r := p.Ranges[tz]
		log.Infof("tiles at zoom %d: %d", tz, r.Count())
		if r.Empty() {
			continue
		}
		if !task.runZoom(r) {
			log.Infof("task %s got canceled", task.ID)
			return nil
		}
	}
	log.Infof("task %s done: %d emitted, %d skipped (dry run: %v)",
		task.ID, task.Emitted, task.Skipped, task.Opts.DryRun)
	return nil
}

// runZoom 遍历单个级别: 列升序, 行降序(固定顺序, 可复现)
// 返回 false 表示任务被中断
func (task *Task) runZoom(r TileRange) bool {
	var bar *pb.ProgressBar
	if task.Opts.Progress {
		bar = pb.New64(r.Count()).Prefix(fmt.Sprintf("Zoom %d : ", r.Zoom))
		bar.SetRefreshRate(time.Second)
		bar.Start()
	}

	for tx := r.MinTX; tx <= r.MaxTX; tx++ {
		for ty := r.MaxTY; ty >= r.MinTY; ty-- {
			if bar != nil {
				bar.Increment()
			}
			t := TileIndex{TX: tx, TY: ty, Zoom: r.Zoom}

			if task.Opts.Region != nil && !task.Opts.Region.Covers(t) {
				task.Skipped++
				continue
			}
			// 续传: 规范路径下已有产出就跳过, 不校验内容
			if task.Opts.Resume && task.Opts.Store.Exists(t) {
				task.Skipped++
				continue
			}

			task.Emitted++
			if task.Opts.DryRun {
				continue
			}

			tt := TileTask{
				ID:         fmt.Sprintf("%s/%s", task.ID, t),
				Tile:       t,
				SourceFile: task.Opts.Source.File(),
				OutputFile: task.Opts.Store.Path(t),
				TileSize:   task.Opts.Pyramid.Merc.TileSize,
				Bands:      DataBands(task.Opts.Source),
				Format:     task.Opts.Format,
			}
			select {
			case task.workers <- struct{}{}:
				task.tileWG.Add(1)
				go task.dispatch(tt)
			case <-task.abort:
				task.tileWG.Wait()
				if bar != nil {
					bar.Finish()
				}
				return false
			}
		}
	}

	// 等待该层结束
	task.tileWG.Wait()
	if bar != nil {
		bar.FinishPrint(fmt.Sprintf("task %s zoom %d finished ~", task.ID, r.Zoom))
	}
	return true
}

// dispatch 把任务交给执行器, 错误只记录不中断遍历
func (task *Task) dispatch(tt TileTask) {
	start := time.Now()
	defer func() {
		task.tileWG.Done()
		<-task.workers
	}()

	if err := task.Opts.Renderer.Render(tt); err != nil {
		log.Errorf("render tile %s error ~ %s", tt.Tile, err)
		return
	}
	log.Debugf("tile %s, %dms -> %s ...", tt.Tile, time.Since(start).Milliseconds(), tt.OutputFile)
}
