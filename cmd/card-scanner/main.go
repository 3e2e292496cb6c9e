package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/zombor/card-scanner/internal/cardscan"
	"github.com/zombor/card-scanner/internal/imageprep"
	"github.com/zombor/card-scanner/internal/ocr"
	"github.com/zombor/card-scanner/internal/ocr/tesseract"
	"github.com/zombor/card-scanner/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

const (
	exitOK      = 0
	exitError   = 1
	exitNoMatch = 2
)

// engineFactory builds the OCR engine; tests swap it for a fake
type engineFactory func(tesseract.Config) ocr.Engine

func newTesseract(config tesseract.Config) ocr.Engine {
	return tesseract.New(config)
}

// cardOutput is what gets printed for a found card
type cardOutput struct {
	Number  string        `json:"number"`
	Expiry  string        `json:"expiry"`
	Network string        `json:"network"`
	Icon    cardscan.Icon `json:"icon"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr, newTesseract))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, newEngine engineFactory) int {
	// Check for version flag before parsing other flags
	for _, arg := range args {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Fprintln(stdout, version)
			return exitOK
		}
	}

	fs := ff.NewFlagSet("card-scanner")
	var (
		maxDimension = fs.IntLong("max-dimension", imageprep.DefaultMaxDimension, "Longest image side handed to the OCR engine")
		noPreprocess = fs.BoolLong("no-preprocess", "Skip grayscale and contrast boosting")
		lang         = fs.StringLong("lang", "eng", "Tesseract languages, comma separated")
		psm          = fs.IntLong("psm", 6, "Tesseract page segmentation mode (0 for engine default)")
		whitelist    = fs.StringLong("whitelist", tesseract.DefaultWhitelist, "Characters the engine may return (empty for all)")
		logLevel     = fs.StringLong("log-level", "info", "Log level: debug, info, warn or error")
		logFormat    = fs.StringLong("log-format", "text", "Log format: 'text' or 'json'")
		showVersion  = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, args,
		ff.WithEnvVarPrefix("CARD_SCANNER"),
	); err != nil {
		fmt.Fprintf(stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Fprintln(stdout, version)
		return exitOK
	}

	logger, err := newLogger(stderr, *logLevel, *logFormat)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
	slog.SetDefault(logger)

	paths := fs.GetArgs()
	if len(paths) == 0 {
		fmt.Fprintf(stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(stderr, "error: at least one frame file is required\n")
		return exitError
	}

	frames, err := readFrames(paths)
	if err != nil {
		slog.Error("Failed to read frames", "error", err)
		return exitError
	}

	engine := newEngine(tesseract.Config{
		Languages:   splitList(*lang),
		PageSegMode: *psm,
		Whitelist:   *whitelist,
	})
	defer engine.Close()

	scanner := scanning.NewScanner(engine, scanning.Config{
		MaxDimension: *maxDimension,
		Preprocess:   !*noPreprocess,
	})

	var found *cardOutput
	err = scanner.ScanFrames(ctx, frames, func(cardNumber, expiryDate, cardType string, cardIcon cardscan.Icon) {
		found = &cardOutput{Number: cardNumber, Expiry: expiryDate, Network: cardType, Icon: cardIcon}
	})
	switch {
	case errors.Is(err, scanning.ErrNoCardFound):
		slog.Info("No card found", "frames", len(frames))
		return exitNoMatch
	case err != nil:
		slog.Error("Scan failed", "error", err)
		return exitError
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(found); err != nil {
		slog.Error("Error encoding card", "error", err)
		return exitError
	}
	return exitOK
}

// readFrames loads frame files in the order given
func readFrames(paths []string) ([]scanning.Frame, error) {
	frames := make([]scanning.Frame, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading frame %s: %w", path, err)
		}
		frames = append(frames, scanning.Frame{
			Name:        filepath.Base(path),
			Data:        data,
			ContentType: scanning.ContentTypeFromExt(filepath.Ext(path)),
		})
	}
	return frames, nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q, valid: text or json", format)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
