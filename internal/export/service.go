package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/scontrini/scontrini/internal/entity"
	"github.com/scontrini/scontrini/internal/repository"
)

// Service is a tiny façade over the repository that produces XLSX bytes for exports.
type Service struct {
	repo   repository.ReceiptRepository
	logger *slog.Logger
}

func NewService(repo repository.ReceiptRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ExportReceiptsXLSX returns an XLSX workbook (as bytes) for the given date window.
// If only from is provided -> from..today (inclusive).
// If only to is provided   -> beginning..to (inclusive).
// If neither is provided   -> all receipts.
func (s *Service) ExportReceiptsXLSX(ctx context.Context, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		t := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		today := time.Now().UTC()
		t := time.Date(today.Year(), today.Month(), today.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}

	recs, err := s.repo.List(ctx, repository.ListFilter{From: fromDate, To: toDate})
	if err != nil {
		return nil, fmt.Errorf("query receipts: %w", err)
	}

	f := excelize.NewFile()
	if err := s.writeReceiptsSheet(f, recs); err != nil {
		return nil, err
	}
	if err := s.writeItemsSheet(f, recs); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	s.logger.Info("export.xlsx.ok", "receipts", len(recs), "bytes", buf.Len(), "duration_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

const (
	receiptsSheet = "Receipts"
	itemsSheet    = "Items"
)

func (s *Service) writeReceiptsSheet(f *excelize.File, recs []*entity.Receipt) error {
	if err := f.SetSheetName(f.GetSheetName(0), receiptsSheet); err != nil {
		return err
	}

	headers := []string{
		"Date",
		"Merchant",
		"VAT ID",
		"Document Number",
		"Total",
		"VAT Rate",
		"VAT Total",
		"Currency",
		"Items",
		"Warnings",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(receiptsSheet, cell, h)
	}

	for row, r := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row+2)
			_ = f.SetCellValue(receiptsSheet, cell, v)
		}
		if r.Info.Datetime != nil {
			write(1, r.Info.Datetime.Format("2006-01-02 15:04"))
		}
		write(2, strOrEmpty(r.Merchant.Name))
		write(3, strOrEmpty(r.Merchant.VATID))
		write(4, strOrEmpty(r.Info.DocumentNumber))
		if r.Totals.Total != nil {
			write(5, *r.Totals.Total)
		}
		if r.Totals.VATRate != nil {
			write(6, *r.Totals.VATRate)
		}
		if r.Totals.VATTotal != nil {
			write(7, *r.Totals.VATTotal)
		}
		write(8, r.Totals.Currency)
		write(9, len(r.Items))
		if len(r.Quality.Warnings) > 0 {
			write(10, fmt.Sprintf("%v", r.Quality.Warnings))
		}
	}
	return nil
}

func (s *Service) writeItemsSheet(f *excelize.File, recs []*entity.Receipt) error {
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return err
	}

	headers := []string{
		"Receipt ID",
		"Merchant",
		"Line",
		"Name",
		"Quantity",
		"Unit",
		"Unit Price",
		"Total Price",
		"VAT Rate",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(itemsSheet, cell, h)
	}

	row := 2
	for _, r := range recs {
		for _, it := range r.Items {
			write := func(col int, v any) {
				cell, _ := excelize.CoordinatesToCellName(col, row)
				_ = f.SetCellValue(itemsSheet, cell, v)
			}
			write(1, r.ID.String())
			write(2, strOrEmpty(r.Merchant.Name))
			write(3, it.RawLine)
			write(4, it.Name)
			if it.Quantity != nil {
				write(5, *it.Quantity)
			}
			write(6, strOrEmpty(it.Unit))
			if it.UnitPrice != nil {
				write(7, *it.UnitPrice)
			}
			if it.TotalPrice != nil {
				write(8, *it.TotalPrice)
			}
			if it.VATRate != nil {
				write(9, *it.VATRate)
			}
			row++
		}
	}
	return nil
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
