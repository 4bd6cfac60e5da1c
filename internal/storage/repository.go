package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"

	"daybook/internal/core"
	"daybook/internal/ports"

	_ "modernc.org/sqlite"
)

const recordColumns = `id, record_date, opening_cash_cents, cash_sales_cents, online_sales_cents,
	cash_taken_out_cents, withdrawal_kind, closing_cash_cents, variance_cents, note,
	created_by, created_at, updated_at`

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

var _ ports.RecordStore = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// recordRow mirrors one daybook_records row.
type recordRow struct {
	ID                int64  `db:"id"`
	RecordDate        string `db:"record_date"`
	OpeningCashCents  int64  `db:"opening_cash_cents"`
	CashSalesCents    int64  `db:"cash_sales_cents"`
	OnlineSalesCents  int64  `db:"online_sales_cents"`
	CashTakenOutCents int64  `db:"cash_taken_out_cents"`
	WithdrawalKind    string `db:"withdrawal_kind"`
	ClosingCashCents  int64  `db:"closing_cash_cents"`
	VarianceCents     int64  `db:"variance_cents"`
	Note              string `db:"note"`
	CreatedBy         int64  `db:"created_by"`
	CreatedAt         string `db:"created_at"`
	UpdatedAt         string `db:"updated_at"`
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListAscending implements ports.RecordStore
func (r *SQLiteRepository) ListAscending(ctx context.Context) ([]core.Record, error) {
	var rows []recordRow
	query := `SELECT ` + recordColumns + ` FROM daybook_records ORDER BY id ASC`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	records := make([]core.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Get implements ports.RecordStore
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (core.Record, error) {
	var row recordRow
	query := `SELECT ` + recordColumns + ` FROM daybook_records WHERE id = ? LIMIT 1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Record{}, core.ErrRecordNotFound
		}
		return core.Record{}, fmt.Errorf("get record %d: %w", id, err)
	}
	return row.toRecord()
}

// Insert implements ports.RecordStore
func (r *SQLiteRepository) Insert(ctx context.Context, rec core.Record) (int64, error) {
	now := r.now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	row := fromRecord(rec)

	query := `
		INSERT INTO daybook_records (record_date, opening_cash_cents, cash_sales_cents, online_sales_cents,
			cash_taken_out_cents, withdrawal_kind, closing_cash_cents, variance_cents, note,
			created_by, created_at, updated_at)
		VALUES (:record_date, :opening_cash_cents, :cash_sales_cents, :online_sales_cents,
			:cash_taken_out_cents, :withdrawal_kind, :closing_cash_cents, :variance_cents, :note,
			:created_by, :created_at, :updated_at)
	`
	res, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted id: %w", err)
	}

	slog.InfoContext(ctx, "Record saved to SQLite",
		"id", id,
		"record_date", row.RecordDate,
		"opening_cents", row.OpeningCashCents,
		"closing_cents", row.ClosingCashCents,
		"created_by", row.CreatedBy)

	return id, nil
}

// Update implements ports.RecordStore
func (r *SQLiteRepository) Update(ctx context.Context, rec core.Record) error {
	rec.UpdatedAt = r.now().UTC()
	query := `
		UPDATE daybook_records
		SET cash_sales_cents = :cash_sales_cents,
			online_sales_cents = :online_sales_cents,
			cash_taken_out_cents = :cash_taken_out_cents,
			withdrawal_kind = :withdrawal_kind,
			note = :note,
			updated_at = :updated_at
		WHERE id = :id
	`
	res, err := r.db.NamedExecContext(ctx, query, fromRecord(rec))
	if err != nil {
		return fmt.Errorf("update record %d: %w", rec.ID, err)
	}
	return requireAffected(res, rec.ID)
}

// UpdateBalances implements ports.RecordStore
func (r *SQLiteRepository) UpdateBalances(ctx context.Context, b core.Balance) error {
	query := `
		UPDATE daybook_records
		SET opening_cash_cents = ?, closing_cash_cents = ?, variance_cents = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := r.db.ExecContext(ctx, query,
		b.OpeningCash.Cents, b.ClosingCash.Cents, b.Variance.Cents, formatTime(r.now().UTC()), b.ID)
	if err != nil {
		return fmt.Errorf("update balances of record %d: %w", b.ID, err)
	}
	return requireAffected(res, b.ID)
}

// Delete implements ports.RecordStore
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM daybook_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record %d: %w", id, err)
	}
	if err := requireAffected(res, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Record deleted from SQLite", "id", id)
	return nil
}

// LatestOnOrBefore implements ports.RecordStore
func (r *SQLiteRepository) LatestOnOrBefore(ctx context.Context, day core.Date) (core.Record, bool, error) {
	var row recordRow
	query := `SELECT ` + recordColumns + ` FROM daybook_records WHERE record_date <= ? ORDER BY id DESC LIMIT 1`
	if err := r.db.GetContext(ctx, &row, query, day.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Record{}, false, nil
		}
		return core.Record{}, false, fmt.Errorf("latest record on or before %s: %w", day, err)
	}
	rec, err := row.toRecord()
	if err != nil {
		return core.Record{}, false, err
	}
	return rec, true, nil
}

// CountByUserOnDate implements ports.RecordStore
func (r *SQLiteRepository) CountByUserOnDate(ctx context.Context, userID int64, day core.Date) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM daybook_records WHERE record_date = ? AND created_by = ?`
	if err := r.db.GetContext(ctx, &count, query, day.String(), userID); err != nil {
		return 0, fmt.Errorf("count records of user %d on %s: %w", userID, day, err)
	}
	return count, nil
}

func requireAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for record %d: %w", id, err)
	}
	if n == 0 {
		return core.ErrRecordNotFound
	}
	return nil
}

func fromRecord(rec core.Record) recordRow {
	return recordRow{
		ID:                rec.ID,
		RecordDate:        rec.Date.String(),
		OpeningCashCents:  rec.OpeningCash.Cents,
		CashSalesCents:    rec.CashSales.Cents,
		OnlineSalesCents:  rec.OnlineSales.Cents,
		CashTakenOutCents: rec.CashTakenOut.Cents,
		WithdrawalKind:    rec.WithdrawalKind.String(),
		ClosingCashCents:  rec.ClosingCash.Cents,
		VarianceCents:     rec.Variance.Cents,
		Note:              rec.Note,
		CreatedBy:         rec.CreatedBy,
		CreatedAt:         formatTime(rec.CreatedAt),
		UpdatedAt:         formatTime(rec.UpdatedAt),
	}
}

func (row recordRow) toRecord() (core.Record, error) {
	date, err := core.ParseDate(row.RecordDate)
	if err != nil {
		return core.Record{}, fmt.Errorf("parse date of record %d: %w", row.ID, err)
	}
	return core.Record{
		ID:             row.ID,
		Date:           date,
		OpeningCash:    core.Money{Cents: row.OpeningCashCents},
		CashSales:      core.Money{Cents: row.CashSalesCents},
		OnlineSales:    core.Money{Cents: row.OnlineSalesCents},
		CashTakenOut:   core.Money{Cents: row.CashTakenOutCents},
		WithdrawalKind: core.ParseWithdrawalKindOrDefault(row.WithdrawalKind),
		ClosingCash:    core.Money{Cents: row.ClosingCashCents},
		Variance:       core.Money{Cents: row.VarianceCents},
		Note:           row.Note,
		CreatedBy:      row.CreatedBy,
		CreatedAt:      parseTime(row.CreatedAt),
		UpdatedAt:      parseTime(row.UpdatedAt),
	}, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime tolerates empty or legacy values; timestamps are informational.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
