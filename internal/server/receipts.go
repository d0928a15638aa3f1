package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/scontrini/scontrini/internal/common"
	"github.com/scontrini/scontrini/internal/repository"
)

func (s *Service) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Service) listReceipts(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recs, err := s.repo.List(c.Request.Context(), filter)
	if err != nil {
		s.logger.Error("server.receipts.list_failed", "error", err)
		c.JSON(common.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipts": recs, "count": len(recs)})
}

func (s *Service) getReceipt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid receipt id"})
		return
	}
	rec, err := s.repo.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(common.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Service) deleteReceipt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid receipt id"})
		return
	}
	if err := s.repo.Delete(c.Request.Context(), id); err != nil {
		c.JSON(common.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// filterFromQuery reads ?from, ?to (YYYY-MM-DD), ?merchant and ?limit.
func filterFromQuery(c *gin.Context) (repository.ListFilter, error) {
	var filter repository.ListFilter
	if v := c.Query("from"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.UTC)
		if err != nil {
			return filter, common.NewAppError("BAD_QUERY", "from must be YYYY-MM-DD", common.ErrInvalidInput)
		}
		filter.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.UTC)
		if err != nil {
			return filter, common.NewAppError("BAD_QUERY", "to must be YYYY-MM-DD", common.ErrInvalidInput)
		}
		end := t.Add(24*time.Hour - time.Second)
		filter.To = &end
	}
	filter.Merchant = c.Query("merchant")
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, common.NewAppError("BAD_QUERY", "limit must be a non-negative integer", common.ErrInvalidInput)
		}
		filter.Limit = n
	}
	return filter, nil
}
