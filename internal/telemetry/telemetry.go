// Package telemetry is the structured-logging wrapper shared by the bblctl
// subcommands. It never touches the decoder package; logging stays entirely
// in the outer layers.
package telemetry

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

var logger = log.New(os.Stdout, "[bblctl] ", log.LstdFlags|log.Lmicroseconds)

// RotationConfig mirrors the fields a YAML config document supplies for the
// lumberjack rotator.
type RotationConfig struct {
	Directory  string
	Filename   string
	MaxSizeMB  int
	MaxAgeDays int
	MaxBackups int
	Compress   bool
}

// UseRotatingFile redirects the package logger to stdout plus a rotating
// log file. Call once during startup after the config has been loaded.
func UseRotatingFile(cfg RotationConfig) error {
	if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
		return err
	}
	filename := cfg.Filename
	if filename == "" {
		filename = "bblctl.log"
	}
	rotator := &lumberjack.Logger{
		Filename:   cfg.Directory + string(os.PathSeparator) + filename,
		MaxSize:    cfg.MaxSizeMB,
		MaxAge:     cfg.MaxAgeDays,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, rotator))
	return nil
}

func Logf(format string, args ...interface{}) {
	logger.Printf(format, args...)
}

func Fatalf(format string, args ...interface{}) {
	logger.Fatalf(format, args...)
}
