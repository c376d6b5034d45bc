package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

var conf *Conf

type Conf struct {
	App struct {
		Version string `toml:"version"`
		Title   string `toml:"title"`
	} `toml:"app"`
	Input struct {
		File string `toml:"file"`
		SRS  string `toml:"srs"`
	} `toml:"input"`
	Output struct {
		Directory      string `toml:"directory"`
		MBTiles        string `toml:"mbtiles"`
		Format         string `toml:"format"`
		LogDir         string `toml:"logDir"`
		OutputTerminal bool   `toml:"outputTerminal"`
	} `toml:"output"`
	Task struct {
		Workers int  `toml:"workers"`
		Resume  bool `toml:"resume"`
		DryRun  bool `toml:"dryRun"`
	} `toml:"task"`
	Tile struct {
		Size int `toml:"size"`
	} `toml:"tile"`
	Region struct {
		Geojson string `toml:"geojson"`
	} `toml:"region"`
}

// InitConf 初始化配置
func InitConf(cfgFile string) {
	if cfgFile == "" {
		cfgFile = "conf.toml"
	}
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		fmt.Printf("config file(%s) not exist", cfgFile)
		os.Exit(1)
	}
	viper.SetConfigType("toml")
	viper.SetConfigFile(cfgFile)
	viper.AutomaticEnv() // read in environment variables that match
	err := viper.ReadInConfig()
	if err != nil {
		log.Warnf("read config file(%s) error, details: %s", viper.ConfigFileUsed(), err)
	}
	// 设置默认值
	viper.SetDefault("app.version", "v 0.1.0")
	viper.SetDefault("app.title", "MapCloud Pyramid Tiler")
	viper.SetDefault("input.srs", TargetSRS)
	viper.SetDefault("output.format", "png")
	viper.SetDefault("output.outputTerminal", true)
	viper.SetDefault("task.workers", 4)
	viper.SetDefault("tile.size", TileSize)

	// 命令行覆盖
	if inputFile != "" {
		viper.Set("input.file", inputFile)
	}
	if outputDir != "" {
		viper.Set("output.directory", outputDir)
	}
	if dryRun {
		viper.Set("task.dryRun", true)
	}
	if resume {
		viper.Set("task.resume", true)
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		panic("配置文件解析失败")
	}
}
