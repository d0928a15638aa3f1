package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/scontrini/scontrini/internal/common"
)

// exportReceipts streams an XLSX workbook for the requested date window.
func (s *Service) exportReceipts(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := s.exporter.ExportReceiptsXLSX(c.Request.Context(), filter.From, filter.To)
	if err != nil {
		s.logger.Error("server.export.failed", "error", err)
		c.JSON(common.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("receipts-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
