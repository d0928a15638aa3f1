package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/scontrini/scontrini/internal/common"
	"github.com/scontrini/scontrini/internal/entity"
)

// ingestRequest is the JSON body: either a server-visible image path to run
// OCR on, or pre-extracted OCR text.
type ingestRequest struct {
	ImagePath  string `json:"image_path"`
	Text       string `json:"text"`
	SourcePath string `json:"source_path"`
	Engine     string `json:"engine"`
	Language   string `json:"language"`
}

// ingest accepts either a multipart image upload (form field "image") or a
// JSON body with an image path or pre-extracted OCR text.
func (s *Service) ingest(c *gin.Context) {
	ct := c.ContentType()
	if strings.HasPrefix(ct, "multipart/form-data") {
		s.ingestImage(c)
		return
	}
	s.ingestJSON(c)
}

func (s *Service) ingestImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing image form field"})
		return
	}
	if file.Size > s.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
		return
	}

	dst := filepath.Join(s.uploadDir, uuid.NewString()+strings.ToLower(filepath.Ext(file.Filename)))
	if err := c.SaveUploadedFile(file, dst); err != nil {
		s.logger.Error("server.ingest.save_failed", "filename", file.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}
	defer func() { _ = os.Remove(dst) }()

	rec, err := s.processor.ProcessImage(c.Request.Context(), dst)
	if err != nil {
		s.logger.Error("server.ingest.process_failed", "filename", file.Filename, "error", err)
		c.JSON(common.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (s *Service) ingestJSON(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.Text == "" && req.ImagePath == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "either text or image_path is required"})
		return
	}

	if req.ImagePath != "" {
		rec, err := s.processor.ProcessImage(c.Request.Context(), req.ImagePath)
		if err != nil {
			s.logger.Error("server.ingest.process_failed", "image_path", req.ImagePath, "error", err)
			c.JSON(common.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, rec)
		return
	}

	engine := req.Engine
	if engine == "" {
		engine = "external"
	}

	rec, err := s.processor.ProcessText(c.Request.Context(), req.Text, entity.Source{
		ImagePath:  req.SourcePath,
		CapturedAt: time.Now().UTC(),
	}, entity.OCRInfo{
		Engine:   engine,
		Language: req.Language,
	}, nil)
	if err != nil {
		s.logger.Error("server.ingest.process_failed", "error", err)
		c.JSON(common.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, rec)
}
