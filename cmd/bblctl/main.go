package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"example.com/bblparse/internal/bbl"
	"example.com/bblparse/internal/common"
	"example.com/bblparse/internal/config"
	"example.com/bblparse/internal/report"
	"example.com/bblparse/internal/telemetry"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	switch os.Args[1] {
	case "decode":
		decodeCmd(os.Args[2:])
	case "stats":
		statsCmd(os.Args[2:])
	case "report":
		reportCmd(os.Args[2:])
	case "batch":
		batchCmd(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Printf(`bblctl %s (built %s) <command> [options]

Commands:
  decode --in <file> [--log <index>] [--raw]
  stats  --in <file> [--log <index>] [--raw]
  report --in <file> [--log <index>] [--raw] --out <report.json> [--pdf <report.pdf>]
  batch  --config <batch.yaml> --in <dir> [--progress]
`, version, buildDate)
}

func decodeCmd(args []string) {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	in := fs.String("in", "", "input blackbox log")
	logIndex := fs.Int("log", 0, "sub-log index within the file")
	raw := fs.Bool("raw", false, "bypass prediction and return wire-level residuals")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}
	dec, err := openDecoder(*in)
	if err != nil {
		fmt.Println("open:", err)
		os.Exit(1)
	}

	frameCount := 0
	ok := dec.Parse(*logIndex, *raw, nil, func(d *bbl.Decoder, valid bool, values bbl.FieldValues, ft bbl.FrameType, fieldCount int, offset int64, size int) {
		frameCount++
		status := "valid"
		if !valid {
			status = "invalid"
		}
		fmt.Printf("%c frame at offset %d: %s, %d bytes\n", byte(ft), offset, status, size)
	}, nil)
	if !ok {
		telemetry.Logf("decode of %s ended with a fatal error: %v", *in, dec.Err())
	}
	fmt.Printf("Decoded %d frame(s) from %s (log %d)\n", frameCount, *in, *logIndex)
}

func statsCmd(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	in := fs.String("in", "", "input blackbox log")
	logIndex := fs.Int("log", 0, "sub-log index within the file")
	raw := fs.Bool("raw", false, "bypass prediction and return wire-level residuals")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}
	dec, err := openDecoder(*in)
	if err != nil {
		fmt.Println("open:", err)
		os.Exit(1)
	}
	dec.Parse(*logIndex, *raw, nil, nil, nil)

	stats := dec.Statistics()
	fmt.Printf("Total bytes: %s\n", common.FormatBytes(stats.TotalBytes))
	fmt.Printf("Total corrupt frames: %d\n", stats.TotalCorruptFrames)
	fmt.Printf("Intentionally absent iterations: %d\n", stats.IntentionallyAbsentIterations)
	fmt.Printf("Main stream valid: %v\n", dec.MainStreamValid())
	fmt.Printf("GPS home valid: %v\n", dec.GPSHomeValid())
	for _, ft := range []bbl.FrameType{bbl.FrameIntra, bbl.FrameInter, bbl.FrameGPS, bbl.FrameGPSHome, bbl.FrameEvent} {
		valid, corrupt, desync := stats.CountsForType(ft)
		fmt.Printf("  %c: bytes=%d valid=%d corrupt=%d desync=%d\n", byte(ft), stats.BytesForType(ft), valid, corrupt, desync)
	}
}

func reportCmd(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	in := fs.String("in", "", "input blackbox log")
	logIndex := fs.Int("log", 0, "sub-log index within the file")
	raw := fs.Bool("raw", false, "bypass prediction and return wire-level residuals")
	out := fs.String("out", "report.json", "output report json")
	pdfOut := fs.String("pdf", "", "optional output report PDF")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}
	dec, err := openDecoder(*in)
	if err != nil {
		fmt.Println("open:", err)
		os.Exit(1)
	}
	dec.Parse(*logIndex, *raw, nil, nil, nil)

	digest, _, err := common.Sha256OfFile(*in)
	if err != nil {
		fmt.Println("hash:", err)
		os.Exit(1)
	}
	rep := report.BuildSessionReport(dec, *in, *logIndex, digest)
	rep.GeneratedAt = time.Now()

	if err := report.SaveSessionReportJSON(rep, *out); err != nil {
		fmt.Println("write report:", err)
		os.Exit(1)
	}
	fmt.Println("Wrote", *out)

	if *pdfOut != "" {
		if err := report.SaveSessionReportPDF(rep, *pdfOut); err != nil {
			fmt.Println("write pdf:", err)
			os.Exit(1)
		}
		fmt.Println("Wrote", *pdfOut)
	}
}

func batchCmd(args []string) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	configPath := fs.String("config", "config/batch.yaml", "path to batch configuration file")
	inDir := fs.String("in", "", "input directory of blackbox logs")
	progressFlag := fs.Bool("progress", false, "display batch decode progress updates")
	fs.Parse(args)

	if *inDir == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Println("load config:", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.StorageDir, 0o755); err != nil {
		fmt.Println("storage dir:", err)
		os.Exit(1)
	}
	if err := telemetry.UseRotatingFile(telemetry.RotationConfig{
		Directory:  cfg.Logs.Directory,
		MaxSizeMB:  cfg.Logs.MaxSizeMB,
		MaxAgeDays: cfg.Logs.MaxAgeDays,
		MaxBackups: cfg.Logs.MaxBackups,
		Compress:   cfg.Logs.Compress,
	}); err != nil {
		fmt.Println("setup logging:", err)
		os.Exit(1)
	}

	entries, err := os.ReadDir(*inDir)
	if err != nil {
		fmt.Println("read dir:", err)
		os.Exit(1)
	}

	var paths []string
	var totalBytes int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(*inDir, entry.Name())
		if info, err := entry.Info(); err == nil {
			totalBytes += info.Size()
		}
		paths = append(paths, path)
	}

	metrics := common.NewMetrics()
	metrics.SetTotalBytes(totalBytes)
	metrics.Start()
	var stopPrinter func()
	if *progressFlag {
		stopPrinter = common.StartProgressPrinter(os.Stderr, metrics, 500*time.Millisecond)
	}

	sem := make(chan struct{}, cfg.Concurrency)
	var wg sync.WaitGroup
	for _, path := range paths {
		wg.Add(1)
		sem <- struct{}{}
		go func(path string) {
			defer wg.Done()
			defer func() { <-sem }()
			batchDecodeOne(path, cfg, metrics)
		}(path)
	}
	wg.Wait()
	if stopPrinter != nil {
		stopPrinter()
	}
	metrics.Stop()

	snapshot := metrics.Snapshot()
	telemetry.Logf("batch decode of %s complete: %d file(s), %s in %s", *inDir, snapshot.Packets, common.FormatBytes(snapshot.Bytes), snapshot.Duration)
}

func batchDecodeOne(path string, cfg config.Config, metrics *common.Metrics) {
	dec, err := openDecoder(path)
	if err != nil {
		telemetry.Logf("%s: open failed: %v", path, err)
		return
	}
	var decoded int64
	for i := 0; i < dec.LogCount(); i++ {
		dec.Parse(i, cfg.RawMode, nil, nil, nil)
		stats := dec.Statistics()
		decoded += stats.TotalBytes
		if stats.TotalCorruptFrames > 0 {
			metrics.IncResync()
		}
		telemetry.Logf("%s[%d]: bytes=%d corrupt=%d mainStreamValid=%v", path, i, stats.TotalBytes, stats.TotalCorruptFrames, dec.MainStreamValid())
	}
	metrics.AddPacket(decoded)
}

func openDecoder(path string) (*bbl.Decoder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return bbl.NewDecoder(data)
}
