package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/scontrini/scontrini/internal/common"
	"github.com/scontrini/scontrini/internal/contract"
	"github.com/scontrini/scontrini/internal/entity"
	"github.com/scontrini/scontrini/internal/ocr"
	"github.com/scontrini/scontrini/internal/parse"
	"github.com/scontrini/scontrini/internal/repository"
)

// Processor coordinates OCR (text extract) then heuristic parse (fields),
// validates the assembled record, and persists it.
type Processor struct {
	logger    *slog.Logger
	engine    ocr.Engine
	repo      repository.ReceiptRepository
	parseOpts ParseOptions
}

// ParseOptions carries locale settings threaded into every parse. Zero values
// keep the parser's Italian defaults.
type ParseOptions struct {
	VATIDPattern *regexp.Regexp
	Country      string
}

// ParseOptionsFromConfig compiles the configured locale overrides. A VAT-id
// pattern that does not compile, or lacks the capture group exposing the id,
// is a startup error.
func ParseOptionsFromConfig(cfg common.ParseConfig) (ParseOptions, error) {
	opts := ParseOptions{Country: cfg.Country}
	if cfg.VATIDPattern == "" {
		return opts, nil
	}
	re, err := regexp.Compile(cfg.VATIDPattern)
	if err != nil {
		return ParseOptions{}, common.NewAppError("CONFIG_ERROR", "PARSE_VAT_PATTERN does not compile", err)
	}
	if re.NumSubexp() < 1 {
		return ParseOptions{}, common.NewAppError("CONFIG_ERROR", "PARSE_VAT_PATTERN must capture the id in a group", common.ErrInvalidInput)
	}
	opts.VATIDPattern = re
	return opts, nil
}

func NewProcessor(logger *slog.Logger, engine ocr.Engine, repo repository.ReceiptRepository) *Processor {
	return NewProcessorWithOptions(logger, engine, repo, ParseOptions{})
}

func NewProcessorWithOptions(logger *slog.Logger, engine ocr.Engine, repo repository.ReceiptRepository, parseOpts ParseOptions) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, engine: engine, repo: repo, parseOpts: parseOpts}
}

// ProcessImage runs the whole pipeline for one image file and returns the
// stored receipt. The repo may be nil for dry runs; the record is then
// assembled and validated but not persisted.
func (p *Processor) ProcessImage(ctx context.Context, imagePath string) (*entity.Receipt, error) {
	res, err := p.engine.Recognize(ctx, imagePath)
	if err != nil {
		p.logger.Error("pipeline.ocr.failed", "path", imagePath, "error", err)
		return nil, err
	}
	p.logger.Debug("pipeline.ocr.ok",
		"path", imagePath,
		"text_bytes", len(res.Text),
		"confidence", res.Confidence,
		"duration_ms", res.Duration.Milliseconds(),
	)

	rec, err := p.ProcessText(ctx, res.Text, entity.Source{
		ImagePath:  imagePath,
		CapturedAt: time.Now().UTC(),
	}, entity.OCRInfo{
		Engine:     res.Engine,
		Language:   res.Language,
		Text:       res.Text,
		Confidence: res.Confidence,
	}, res.PreprocessSteps)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ProcessText parses already-extracted OCR text. This is the ingest path for
// clients that run their own OCR and post raw text.
func (p *Processor) ProcessText(ctx context.Context, text string, source entity.Source, info entity.OCRInfo, steps []string) (*entity.Receipt, error) {
	rec := parse.ParseReceipt(text, parse.AssembleOptions{
		Source:          source,
		OCR:             info,
		PreprocessSteps: steps,
		VATIDPattern:    p.parseOpts.VATIDPattern,
		Country:         p.parseOpts.Country,
	})

	if err := contract.ValidateReceipt(rec); err != nil {
		p.logger.Error("pipeline.validate.failed", "path", source.ImagePath, "error", err)
		return nil, common.NewAppError("CONTRACT_ERROR", "assembled receipt violates contract",
			fmt.Errorf("%w: %w", common.ErrValidation, err))
	}

	if p.repo != nil {
		if err := p.repo.Save(ctx, rec); err != nil {
			p.logger.Error("pipeline.persist.failed", "path", source.ImagePath, "error", err)
			return nil, err
		}
	}

	p.logger.Info("pipeline.receipt.ok",
		"id", rec.ID,
		"items", len(rec.Items),
		"warnings", len(rec.Quality.Warnings),
	)
	return rec, nil
}
