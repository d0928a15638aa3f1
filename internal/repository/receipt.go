package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scontrini/scontrini/internal/common"
	"github.com/scontrini/scontrini/internal/entity"
)

// ListFilter narrows List results. Zero values mean "no constraint".
type ListFilter struct {
	From     *time.Time
	To       *time.Time
	Merchant string
	Limit    int
}

type ReceiptRepository interface {
	Save(ctx context.Context, r *entity.Receipt) error
	Get(ctx context.Context, id uuid.UUID) (*entity.Receipt, error)
	List(ctx context.Context, filter ListFilter) ([]*entity.Receipt, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type receiptRepository struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

func NewReceiptRepository(db *sql.DB, driver string, logger *slog.Logger) ReceiptRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &receiptRepository{db: db, driver: driver, logger: logger}
}

// bind rewrites ? placeholders to $N for the pgx driver.
func (r *receiptRepository) bind(query string) string {
	if r.driver != "pgx" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (r *receiptRepository) Save(ctx context.Context, rec *entity.Receipt) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	steps, err := json.Marshal(rec.Quality.PreprocessSteps)
	if err != nil {
		return common.WrapError(err, "marshal preprocess steps")
	}
	warnings, err := json.Marshal(rec.Quality.Warnings)
	if err != nil {
		return common.WrapError(err, "marshal warnings")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return common.WrapError(err, "begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, r.bind(`
		INSERT INTO receipts (
			id, image_path, captured_at,
			merchant_name, merchant_address, merchant_vat_id, merchant_country,
			doc_datetime, document_number,
			total, vat_rate, vat_total, currency,
			ocr_engine, ocr_lang, ocr_text, ocr_confidence,
			preprocess_steps, warnings, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		rec.ID.String(), rec.Source.ImagePath, nullTime(rec.Source.CapturedAt),
		rec.Merchant.Name, rec.Merchant.Address, rec.Merchant.VATID, rec.Merchant.Country,
		rec.Info.Datetime, rec.Info.DocumentNumber,
		rec.Totals.Total, rec.Totals.VATRate, rec.Totals.VATTotal, rec.Totals.Currency,
		rec.OCR.Engine, rec.OCR.Language, rec.OCR.Text, rec.OCR.Confidence,
		string(steps), string(warnings), rec.CreatedAt,
	)
	if err != nil {
		r.logger.Error("repository.receipt.save_failed", "id", rec.ID, "error", err)
		return common.NewAppError("DB_ERROR", "insert receipt", common.ErrDatabase)
	}

	for i, it := range rec.Items {
		_, err = tx.ExecContext(ctx, r.bind(`
			INSERT INTO receipt_items (
				receipt_id, position, raw_line, name,
				quantity, unit, unit_price, total_price, vat_rate
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			rec.ID.String(), i, it.RawLine, it.Name,
			it.Quantity, it.Unit, it.UnitPrice, it.TotalPrice, it.VATRate,
		)
		if err != nil {
			r.logger.Error("repository.receipt.save_item_failed", "id", rec.ID, "position", i, "error", err)
			return common.NewAppError("DB_ERROR", "insert receipt item", common.ErrDatabase)
		}
	}

	if err := tx.Commit(); err != nil {
		return common.WrapError(err, "commit")
	}
	r.logger.Debug("repository.receipt.saved", "id", rec.ID, "items", len(rec.Items))
	return nil
}

func (r *receiptRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	row := r.db.QueryRowContext(ctx, r.bind(`
		SELECT id, image_path, captured_at,
		       merchant_name, merchant_address, merchant_vat_id, merchant_country,
		       doc_datetime, document_number,
		       total, vat_rate, vat_total, currency,
		       ocr_engine, ocr_lang, ocr_text, ocr_confidence,
		       preprocess_steps, warnings, created_at
		FROM receipts WHERE id = ?`), id.String())

	rec, err := scanReceipt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("NOT_FOUND", fmt.Sprintf("receipt %s", id), common.ErrNotFound)
	}
	if err != nil {
		return nil, common.WrapError(err, "scan receipt")
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.Items = items
	return rec, nil
}

func (r *receiptRepository) List(ctx context.Context, filter ListFilter) ([]*entity.Receipt, error) {
	query := `
		SELECT id, image_path, captured_at,
		       merchant_name, merchant_address, merchant_vat_id, merchant_country,
		       doc_datetime, document_number,
		       total, vat_rate, vat_total, currency,
		       ocr_engine, ocr_lang, ocr_text, ocr_confidence,
		       preprocess_steps, warnings, created_at
		FROM receipts`
	var conds []string
	var args []any
	if filter.From != nil {
		conds = append(conds, "doc_datetime >= ?")
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conds = append(conds, "doc_datetime <= ?")
		args = append(args, *filter.To)
	}
	if filter.Merchant != "" {
		conds = append(conds, "merchant_name LIKE ?")
		args = append(args, "%"+filter.Merchant+"%")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, r.bind(query), args...)
	if err != nil {
		r.logger.Error("repository.receipt.list_failed", "error", err)
		return nil, common.NewAppError("DB_ERROR", "list receipts", common.ErrDatabase)
	}
	defer rows.Close()

	var out []*entity.Receipt
	for rows.Next() {
		rec, err := scanReceipt(rows)
		if err != nil {
			return nil, common.WrapError(err, "scan receipt")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapError(err, "iterate receipts")
	}

	for _, rec := range out {
		items, err := r.loadItems(ctx, rec.ID)
		if err != nil {
			return nil, err
		}
		rec.Items = items
	}
	return out, nil
}

func (r *receiptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, r.bind(`DELETE FROM receipts WHERE id = ?`), id.String())
	if err != nil {
		return common.NewAppError("DB_ERROR", "delete receipt", common.ErrDatabase)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.NewAppError("NOT_FOUND", fmt.Sprintf("receipt %s", id), common.ErrNotFound)
	}
	return nil
}

func (r *receiptRepository) loadItems(ctx context.Context, id uuid.UUID) ([]entity.ReceiptItem, error) {
	rows, err := r.db.QueryContext(ctx, r.bind(`
		SELECT raw_line, name, quantity, unit, unit_price, total_price, vat_rate
		FROM receipt_items WHERE receipt_id = ? ORDER BY position`), id.String())
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "load receipt items", common.ErrDatabase)
	}
	defer rows.Close()

	items := []entity.ReceiptItem{}
	for rows.Next() {
		var it entity.ReceiptItem
		var qty, up, tp, vr sql.NullFloat64
		var unit sql.NullString
		if err := rows.Scan(&it.RawLine, &it.Name, &qty, &unit, &up, &tp, &vr); err != nil {
			return nil, common.WrapError(err, "scan item")
		}
		it.Quantity = nullFloatPtr(qty)
		it.Unit = nullStringPtr(unit)
		it.UnitPrice = nullFloatPtr(up)
		it.TotalPrice = nullFloatPtr(tp)
		it.VATRate = nullFloatPtr(vr)
		items = append(items, it)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReceipt(row rowScanner) (*entity.Receipt, error) {
	var (
		rec           entity.Receipt
		idStr         string
		capturedAt    sql.NullTime
		name, addr    sql.NullString
		vatID, docNum sql.NullString
		docDatetime   sql.NullTime
		total, vRate  sql.NullFloat64
		vTotal        sql.NullFloat64
		steps, warns  string
	)
	err := row.Scan(
		&idStr, &rec.Source.ImagePath, &capturedAt,
		&name, &addr, &vatID, &rec.Merchant.Country,
		&docDatetime, &docNum,
		&total, &vRate, &vTotal, &rec.Totals.Currency,
		&rec.OCR.Engine, &rec.OCR.Language, &rec.OCR.Text, &rec.OCR.Confidence,
		&steps, &warns, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, common.WrapError(err, "parse receipt id")
	}
	if capturedAt.Valid {
		rec.Source.CapturedAt = capturedAt.Time
	}
	rec.Merchant.Name = nullStringPtr(name)
	rec.Merchant.Address = nullStringPtr(addr)
	rec.Merchant.VATID = nullStringPtr(vatID)
	if docDatetime.Valid {
		t := docDatetime.Time.UTC()
		rec.Info.Datetime = &t
	}
	rec.Info.DocumentNumber = nullStringPtr(docNum)
	rec.Totals.Total = nullFloatPtr(total)
	rec.Totals.VATRate = nullFloatPtr(vRate)
	rec.Totals.VATTotal = nullFloatPtr(vTotal)

	if err := json.Unmarshal([]byte(steps), &rec.Quality.PreprocessSteps); err != nil {
		return nil, common.WrapError(err, "decode preprocess steps")
	}
	if err := json.Unmarshal([]byte(warns), &rec.Quality.Warnings); err != nil {
		return nil, common.WrapError(err, "decode warnings")
	}
	return &rec, nil
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullFloatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullStringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
