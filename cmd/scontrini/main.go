package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/scontrini/scontrini/internal/common"
	"github.com/scontrini/scontrini/internal/export"
	"github.com/scontrini/scontrini/internal/ocr"
	"github.com/scontrini/scontrini/internal/parse"
	"github.com/scontrini/scontrini/internal/pipeline"
	"github.com/scontrini/scontrini/internal/repository"
)

const usage = `usage: scontrini <command> [flags]

commands:
  run        OCR one image, parse it, and store the receipt
  dump-json  OCR one image (or read a text file) and print the parsed receipt as JSON
  batch      process every image in a directory
  export     write stored receipts to an XLSX workbook
`

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printError(usage)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	ctx := context.Background()

	var err error
	switch os.Args[1] {
	case "run":
		err = runCmd(ctx, cfg, logger, os.Args[2:])
	case "dump-json":
		err = dumpJSONCmd(ctx, cfg, logger, os.Args[2:])
	case "batch":
		err = batchCmd(ctx, cfg, logger, os.Args[2:])
	case "export":
		err = exportCmd(ctx, cfg, logger, os.Args[2:])
	default:
		printError(usage)
		os.Exit(1)
	}
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
}

func newProcessor(cfg *common.Config, logger *slog.Logger, repo repository.ReceiptRepository) (*pipeline.Processor, error) {
	parseOpts, err := pipeline.ParseOptionsFromConfig(cfg.Parse)
	if err != nil {
		return nil, err
	}
	return pipeline.NewProcessorWithOptions(logger, newEngine(cfg, logger), repo, parseOpts), nil
}

func newEngine(cfg *common.Config, logger *slog.Logger) ocr.Engine {
	return ocr.NewTesseractEngine(ocr.Config{
		Language:         cfg.OCR.Language,
		TessdataDir:      cfg.OCR.TessdataDir,
		PSM:              cfg.OCR.PageSegMode,
		ArtifactCacheDir: cfg.OCR.ArtifactCacheDir,
		PreprocessWidth:  cfg.OCR.PreprocessWidth,
	}, logger)
}

func openRepo(ctx context.Context, cfg *common.Config, logger *slog.Logger) (repository.ReceiptRepository, func(), error) {
	db, err := repository.Open(ctx, repository.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { repository.Close(db, logger) }
	return repository.NewReceiptRepository(db, cfg.Database.Driver, logger), cleanup, nil
}

func runCmd(ctx context.Context, cfg *common.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	image := fs.String("image", "", "path to the receipt image (required)")
	dbURL := fs.String("db", "", "database DSN (overrides DB_URL)")
	lang := fs.String("lang", "", "tesseract language (overrides OCR_LANGUAGE)")
	psm := fs.Int("psm", 0, "tesseract page segmentation mode (overrides OCR_PSM)")
	_ = fs.Parse(args)
	if *image == "" {
		return fmt.Errorf("--image is required")
	}
	if *dbURL != "" {
		cfg.Database.DSN = *dbURL
	}
	if *lang != "" {
		cfg.OCR.Language = *lang
	}
	if *psm > 0 {
		cfg.OCR.PageSegMode = *psm
	}

	repo, cleanup, err := openRepo(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	proc, err := newProcessor(cfg, logger, repo)
	if err != nil {
		return err
	}
	rec, err := proc.ProcessImage(ctx, *image)
	if err != nil {
		return err
	}
	fmt.Printf("stored receipt %s with %d items\n", rec.ID, len(rec.Items))
	for _, w := range rec.Quality.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	return nil
}

func dumpJSONCmd(ctx context.Context, cfg *common.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("dump-json", flag.ExitOnError)
	image := fs.String("image", "", "path to the receipt image")
	textFile := fs.String("text", "", "path to a file with already-extracted OCR text")
	_ = fs.Parse(args)

	parseOpts, err := pipeline.ParseOptionsFromConfig(cfg.Parse)
	if err != nil {
		return err
	}

	var rec any
	switch {
	case *image != "":
		proc := pipeline.NewProcessorWithOptions(logger, newEngine(cfg, logger), nil, parseOpts)
		r, err := proc.ProcessImage(ctx, *image)
		if err != nil {
			return err
		}
		rec = r
	case *textFile != "":
		raw, err := os.ReadFile(*textFile)
		if err != nil {
			return err
		}
		rec = parse.ParseReceipt(string(raw), parse.AssembleOptions{
			VATIDPattern: parseOpts.VATIDPattern,
			Country:      parseOpts.Country,
		})
	default:
		return fmt.Errorf("either --image or --text is required")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

func batchCmd(ctx context.Context, cfg *common.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	dir := fs.String("dir", "", "directory with receipt images (required)")
	_ = fs.Parse(args)
	if *dir == "" {
		return fmt.Errorf("--dir is required")
	}

	repo, cleanup, err := openRepo(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	proc, err := newProcessor(cfg, logger, repo)
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		return err
	}
	var done, failed int
	for _, e := range entries {
		if e.IsDir() || !isImageExt(filepath.Ext(e.Name())) {
			continue
		}
		path := filepath.Join(*dir, e.Name())
		rec, err := proc.ProcessImage(ctx, path)
		if err != nil {
			printError("failed: %s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("ok: %s -> %s (%d items)\n", e.Name(), rec.ID, len(rec.Items))
		done++
	}
	fmt.Printf("processed %d receipts, %d failed\n", done, failed)
	if failed > 0 && done == 0 {
		return fmt.Errorf("all %d files failed", failed)
	}
	return nil
}

func exportCmd(ctx context.Context, cfg *common.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "receipts.xlsx", "output XLSX file path")
	fromStr := fs.String("from", "", "from date YYYY-MM-DD")
	toStr := fs.String("to", "", "to date YYYY-MM-DD")
	_ = fs.Parse(args)

	var from, to *time.Time
	if *fromStr != "" {
		parsed, err := time.Parse("2006-01-02", *fromStr)
		if err != nil {
			return fmt.Errorf("invalid --from date, use YYYY-MM-DD: %w", err)
		}
		from = &parsed
	}
	if *toStr != "" {
		parsed, err := time.Parse("2006-01-02", *toStr)
		if err != nil {
			return fmt.Errorf("invalid --to date, use YYYY-MM-DD: %w", err)
		}
		to = &parsed
	}

	repo, cleanup, err := openRepo(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	data, err := export.NewService(repo, logger).ExportReceiptsXLSX(ctx, from, to)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bytes)\n", *out, len(data))
	return nil
}

func isImageExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png", ".tif", ".tiff", ".bmp":
		return true
	}
	return false
}
