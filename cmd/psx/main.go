package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"PSXPipeline/internal/collector"
	"PSXPipeline/internal/config"
	"PSXPipeline/internal/pipeline"
	"PSXPipeline/internal/recorder"
	"PSXPipeline/internal/store"
)

const version = "0.1.0"

func main() {
	syncOpt := flag.Bool("sync-tickers", false, "Sync the ticker list from PSX and log changes.")
	historicalOpt := flag.Bool("download-historical", false, "Download historical OHLC data for all tickers in the latest snapshot.")
	fullRunOpt := flag.Bool("full-run", false, "Execute the complete pipeline: ticker sync, then historical download.")
	mockOpt := flag.Bool("mock", false, "Use canned data instead of the live website.")
	maxTickersOpt := flag.Int("max-tickers", 0, "Cap the number of tickers processed (0 = no cap).")
	configOpt := flag.String("config", "", "Path to the YAML config file.")
	versionOpt := flag.Bool("version", false, "Print version and exit.")
	flag.Parse()

	if *versionOpt {
		fmt.Printf("psx pipeline v%s\n", version)
		return
	}

	cfgPath := *configOpt
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			cfgPath = v
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if *mockOpt {
		cfg.Mock = true
	}
	if *maxTickersOpt > 0 {
		cfg.MaxTickers = *maxTickersOpt
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	setupLogging(cfg.Paths.LogDir)
	log.Printf("[INFO] psx pipeline v%s starting", version)

	var fetcher collector.Fetcher
	if cfg.Mock {
		fetcher = collector.NewMockFetcher()
	} else {
		fetcher = collector.NewPSXFetcher(cfg)
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	st, err := store.New(cfg.Paths.DataDir, cfg.Paths.MetadataDir)
	if err != nil {
		log.Fatalf("[FATAL] init store: %v", err)
	}

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Cancel the run on Ctrl+C.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("[INFO] shutdown signal received, cancelling")
		cancel()
	}()

	p := pipeline.New(cfg, fetcher, st, rec)

	switch {
	case *syncOpt:
		err = p.SyncTickers(ctx)
	case *historicalOpt:
		err = p.DownloadHistorical(ctx)
	case *fullRunOpt:
		err = p.FullRun(ctx)
	default:
		// No mode flag behaves like -full-run.
		err = p.FullRun(ctx)
	}
	if err != nil {
		log.Fatalf("[FATAL] pipeline: %v", err)
	}
	log.Println("[INFO] pipeline execution completed")
}

// setupLogging tees log output to stdout and a dated file under logDir.
func setupLogging(logDir string) {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		log.Printf("[WARN] create log dir: %v", err)
		return
	}
	name := filepath.Join(logDir, fmt.Sprintf("pipeline_%s.log", time.Now().Format("2006-01-02")))
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("[WARN] open log file: %v", err)
		return
	}
	log.SetOutput(io.MultiWriter(os.Stdout, f))
}
