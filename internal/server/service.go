package server

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/scontrini/scontrini/internal/export"
	"github.com/scontrini/scontrini/internal/pipeline"
	"github.com/scontrini/scontrini/internal/repository"
)

// Service wires the HTTP surface: ingest, queries, export, health.
type Service struct {
	logger         *slog.Logger
	processor      *pipeline.Processor
	repo           repository.ReceiptRepository
	exporter       *export.Service
	uploadDir      string
	maxUploadBytes int64
}

type Options struct {
	UploadDir      string
	MaxUploadBytes int64
}

func NewService(logger *slog.Logger, processor *pipeline.Processor, repo repository.ReceiptRepository, exporter *export.Service, opts Options) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.UploadDir == "" {
		opts.UploadDir = "./tmp"
	}
	if opts.MaxUploadBytes == 0 {
		opts.MaxUploadBytes = 20 << 20
	}
	return &Service{
		logger:         logger,
		processor:      processor,
		repo:           repo,
		exporter:       exporter,
		uploadDir:      opts.UploadDir,
		maxUploadBytes: opts.MaxUploadBytes,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Service) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = s.maxUploadBytes

	r.GET("/health", s.health)
	r.POST("/ingest", s.ingest)
	r.GET("/receipts", s.listReceipts)
	r.GET("/receipts/export", s.exportReceipts)
	r.GET("/receipts/:id", s.getReceipt)
	r.DELETE("/receipts/:id", s.deleteReceipt)
	return r
}
