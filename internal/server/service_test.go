package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/scontrini/scontrini/internal/export"
	"github.com/scontrini/scontrini/internal/pipeline"
	"github.com/scontrini/scontrini/internal/repository"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repository.Open(context.Background(), repository.Config{
		Driver:       "sqlite",
		DSN:          "file::memory:?_pragma=foreign_keys(1)",
		MaxOpenConns: 1,
	}, slog.Default())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := repository.NewReceiptRepository(db, "sqlite", slog.Default())
	proc := pipeline.NewProcessor(slog.Default(), nil, repo)
	exporter := export.NewService(repo, slog.Default())
	svc := NewService(slog.Default(), proc, repo, exporter, Options{UploadDir: t.TempDir()})
	return svc.Router()
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestIngestTextAndList(t *testing.T) {
	router := newTestRouter(t)

	body := `{"text": "SUPERMERCATO ROSSI SRL\nP.IVA 01234567890\n23/12/2024 18:32\nPANE 1,20\nTOTALE 1,20"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("ingest status = %d, body = %s", w.Code, w.Body.String())
	}

	var created struct {
		ID     string `json:"id"`
		Totals struct {
			Total *float64 `json:"total"`
		} `json:"totals"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Totals.Total == nil || *created.Totals.Total != 1.20 {
		t.Errorf("total = %v, want 1.20", created.Totals.Total)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/receipts", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var listed struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if listed.Count != 1 {
		t.Errorf("count = %d, want 1", listed.Count)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/receipts/"+created.ID, nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/receipts/"+created.ID, nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
}

func TestIngestRejectsMissingText(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetUnknownReceipt(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/receipts/1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/receipts/not-a-uuid", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestExportEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/receipts/export?from=2024-01-01&to=2024-12-31", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("content type = %q", ct)
	}
	if w.Body.Len() == 0 {
		t.Error("empty workbook body")
	}
}

func TestBadDateQuery(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/receipts?from=23-12-2024", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
