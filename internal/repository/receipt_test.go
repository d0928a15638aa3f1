package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/scontrini/scontrini/internal/common"
	"github.com/scontrini/scontrini/internal/entity"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), Config{
		Driver:       "sqlite",
		DSN:          "file::memory:?_pragma=foreign_keys(1)",
		MaxOpenConns: 1,
	}, slog.Default())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sampleReceipt() *entity.Receipt {
	name := "SUPERMERCATO ROSSI SRL"
	vatID := "01234567890"
	total := 15.00
	qty := 2.0
	unitPrice := 0.50
	linePrice := 1.00
	dt := time.Date(2024, 12, 23, 18, 32, 0, 0, time.UTC)
	return &entity.Receipt{
		Source:   entity.Source{ImagePath: "/tmp/r1.jpg", CapturedAt: dt},
		Merchant: entity.Merchant{Name: &name, VATID: &vatID, Country: "IT"},
		Info:     entity.ReceiptInfo{Datetime: &dt},
		Totals:   entity.Totals{Total: &total, Currency: "EUR"},
		Items: []entity.ReceiptItem{
			{RawLine: "PANE 1,20", Name: "PANE"},
			{RawLine: "ACQUA 1,5L x2 0,50 1,00", Name: "ACQUA 1,5L", Quantity: &qty, UnitPrice: &unitPrice, TotalPrice: &linePrice},
		},
		OCR:     entity.OCRInfo{Engine: "tesseract", Language: "ita", Confidence: 0.8},
		Quality: entity.Quality{PreprocessSteps: []string{"grayscale"}, Warnings: []string{"total_missing"}},
	}
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewReceiptRepository(db, "sqlite", slog.Default())
	ctx := context.Background()

	rec := sampleReceipt()
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	if rec.ID == uuid.Nil {
		t.Fatal("save must assign an id")
	}

	got, err := repo.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Merchant.Name == nil || *got.Merchant.Name != "SUPERMERCATO ROSSI SRL" {
		t.Errorf("merchant name = %v", got.Merchant.Name)
	}
	if got.Totals.Total == nil || *got.Totals.Total != 15.00 {
		t.Errorf("total = %v", got.Totals.Total)
	}
	if got.Info.Datetime == nil || !got.Info.Datetime.Equal(*rec.Info.Datetime) {
		t.Errorf("datetime = %v", got.Info.Datetime)
	}
	if len(got.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(got.Items))
	}
	if got.Items[0].RawLine != "PANE 1,20" || got.Items[1].Name != "ACQUA 1,5L" {
		t.Errorf("item order not preserved: %+v", got.Items)
	}
	if got.Items[0].TotalPrice != nil {
		t.Error("absent total price must stay absent")
	}
	if got.Items[1].Quantity == nil || *got.Items[1].Quantity != 2.0 {
		t.Errorf("items[1].Quantity = %v", got.Items[1].Quantity)
	}
	if len(got.Quality.Warnings) != 1 || got.Quality.Warnings[0] != "total_missing" {
		t.Errorf("warnings = %v", got.Quality.Warnings)
	}
}

func TestGetMissingReceipt(t *testing.T) {
	db := openTestDB(t)
	repo := NewReceiptRepository(db, "sqlite", slog.Default())

	_, err := repo.Get(context.Background(), uuid.New())
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListFilters(t *testing.T) {
	db := openTestDB(t)
	repo := NewReceiptRepository(db, "sqlite", slog.Default())
	ctx := context.Background()

	first := sampleReceipt()
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	second := sampleReceipt()
	other := "BAR MARIO"
	second.ID = uuid.Nil
	second.Merchant.Name = &other
	early := time.Date(2023, 1, 5, 9, 0, 0, 0, time.UTC)
	second.Info.Datetime = &early
	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	all, err := repo.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d receipts, want 2", len(all))
	}

	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recent, err := repo.List(ctx, ListFilter{From: &cutoff})
	if err != nil {
		t.Fatalf("list from: %v", err)
	}
	if len(recent) != 1 || *recent[0].Merchant.Name != "SUPERMERCATO ROSSI SRL" {
		t.Fatalf("date filter returned %d receipts", len(recent))
	}

	byName, err := repo.List(ctx, ListFilter{Merchant: "MARIO"})
	if err != nil {
		t.Fatalf("list merchant: %v", err)
	}
	if len(byName) != 1 || *byName[0].Merchant.Name != "BAR MARIO" {
		t.Fatalf("merchant filter returned %d receipts", len(byName))
	}
}

func TestDeleteCascadesToItems(t *testing.T) {
	db := openTestDB(t)
	repo := NewReceiptRepository(db, "sqlite", slog.Default())
	ctx := context.Background()

	rec := sampleReceipt()
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM receipt_items`).Scan(&n); err != nil {
		t.Fatalf("count items: %v", err)
	}
	if n != 0 {
		t.Errorf("items left after cascade delete: %d", n)
	}

	if err := repo.Delete(ctx, rec.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}
