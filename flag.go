package main

import (
	"flag"
	"fmt"
	"os"
)

var (
	hf         bool
	configPath string
	logLevel   string
	inputFile  string
	outputDir  string
	dryRun     bool
	resume     bool
)

func InitFlag() {
	flag.BoolVar(&hf, "h", false, "this help")
	flag.StringVar(&configPath, "c", "./conf/conf.toml", "set config `file`")
	flag.StringVar(&logLevel, "l", "info", "set log level (default: info)")
	flag.StringVar(&inputFile, "i", "", "input raster `file` (overrides config)")
	flag.StringVar(&outputDir, "o", "", "output `directory` (overrides config)")
	flag.BoolVar(&dryRun, "n", false, "dry run, only validate input and count tiles")
	flag.BoolVar(&resume, "e", false, "resume, skip tiles that already exist")
	flag.Usage = usage
	flag.Parse()

	if hf {
		flag.Usage()
		os.Exit(0)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `rastertiler version: rastertiler/v0.1.0
Usage: rastertiler [-h] [-c filename] [-l logLevel] [-i input] [-o output] [-n] [-e]
`)
	flag.PrintDefaults()
}
