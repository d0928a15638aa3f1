package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/otiai10/gosseract/v2"

	"github.com/scontrini/scontrini/internal/common"
)

// Config controls the tesseract pass.
type Config struct {
	Language    string // default "ita"
	TessdataDir string
	PSM         int // page segmentation mode, 6 works for receipt columns

	ArtifactCacheDir string
	PreprocessWidth  int
}

// Result is one completed OCR pass over one image.
type Result struct {
	Text            string
	Language        string
	Engine          string
	Confidence      float32
	PreprocessSteps []string
	Duration        time.Duration
	Warnings        []string
}

// Engine abstracts the OCR backend so the pipeline can be tested without
// tesseract installed.
type Engine interface {
	Recognize(ctx context.Context, imagePath string) (Result, error)
}

// TesseractEngine runs gosseract over a preprocessed copy of the image.
type TesseractEngine struct {
	cfg    Config
	logger *slog.Logger
}

func NewTesseractEngine(cfg Config, logger *slog.Logger) *TesseractEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Language == "" {
		cfg.Language = "ita"
	}
	if cfg.PSM == 0 {
		cfg.PSM = 6
	}
	if cfg.ArtifactCacheDir == "" {
		cfg.ArtifactCacheDir = "./tmp"
	}
	if cfg.PreprocessWidth == 0 {
		cfg.PreprocessWidth = 1600
	}
	return &TesseractEngine{cfg: cfg, logger: logger}
}

func (e *TesseractEngine) Recognize(ctx context.Context, imagePath string) (Result, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	path, steps, warns, cleanup := e.preprocessed(imagePath)
	if cleanup != nil {
		defer cleanup()
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.cfg.Language); err != nil {
		return Result{}, common.WrapError(err, "set language")
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(e.cfg.PSM)); err != nil {
		return Result{}, common.WrapError(err, "set psm")
	}
	if e.cfg.TessdataDir != "" {
		if err := client.SetTessdataPrefix(e.cfg.TessdataDir); err != nil {
			return Result{}, common.WrapError(err, "set tessdata prefix")
		}
	}
	if err := client.SetImage(path); err != nil {
		return Result{}, common.WrapError(err, "set image")
	}

	text, err := client.Text()
	if err != nil {
		e.logger.Error("ocr.tesseract.failed", "path", imagePath, "error", err)
		return Result{}, common.NewAppError("OCR_FAILED", fmt.Sprintf("tesseract on %s", imagePath), common.ErrOCR)
	}

	res := Result{
		Text:            text,
		Language:        e.cfg.Language,
		Engine:          "tesseract",
		Confidence:      heuristicConfidence(text),
		PreprocessSteps: steps,
		Duration:        time.Since(start),
		Warnings:        warns,
	}
	e.logger.Debug("ocr.tesseract.ok",
		"path", imagePath,
		"text_bytes", len(text),
		"confidence", res.Confidence,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// preprocessed returns the path tesseract should read. On any preprocessing
// failure the original image is used and the failure is kept as a warning.
func (e *TesseractEngine) preprocessed(imagePath string) (string, []string, []string, func()) {
	out, steps, err := Preprocess(imagePath, e.cfg.ArtifactCacheDir, e.cfg.PreprocessWidth)
	if err != nil {
		e.logger.Warn("ocr.preprocess.failed", "path", imagePath, "error", err)
		return imagePath, nil, []string{fmt.Sprintf("preprocess: %v", err)}, nil
	}
	return out, steps, nil, func() { removeArtifact(out) }
}
