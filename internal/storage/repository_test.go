package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"daybook/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "daybook.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func sample(date core.Date, user int64, cashSales int64) core.Record {
	return core.Record{
		Date:           date,
		CashSales:      core.Money{Cents: cashSales},
		OnlineSales:    core.Money{Cents: 250},
		CashTakenOut:   core.Money{Cents: 100},
		WithdrawalKind: core.WithdrawalOnline,
		ClosingCash:    core.Money{Cents: cashSales},
		Note:           "till counted",
		CreatedBy:      user,
	}
}

func TestSQLiteRepository_InsertGetList(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	day := core.NewDate(2025, 6, 1)

	id1, err := repo.Insert(ctx, sample(day, 7, 1000))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	id2, err := repo.Insert(ctx, sample(day, 8, 2000))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id2 <= id1 {
		t.Fatalf("ids must be monotonic: %d then %d", id1, id2)
	}

	got, err := repo.Get(ctx, id1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Date.String() != "2025-06-01" || got.CashSales.Cents != 1000 || got.OnlineSales.Cents != 250 {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.WithdrawalKind != core.WithdrawalOnline || got.Note != "till counted" || got.CreatedBy != 7 {
		t.Errorf("unexpected record fields: %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Errorf("timestamps not set: %+v", got)
	}

	list, err := repo.ListAscending(ctx)
	if err != nil {
		t.Fatalf("ListAscending: %v", err)
	}
	if len(list) != 2 || list[0].ID != id1 || list[1].ID != id2 {
		t.Fatalf("unexpected list order: %+v", list)
	}
}

func TestSQLiteRepository_UpdateAndBalances(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	id, err := repo.Insert(ctx, sample(core.NewDate(2025, 6, 1), 1, 1000))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	rec, _ := repo.Get(ctx, id)
	rec.CashSales = core.Money{Cents: 4200}
	rec.WithdrawalKind = core.WithdrawalCash
	rec.Note = "corrected"
	rec.ClosingCash = core.Money{Cents: 1} // ignored by Update
	if err := repo.Update(ctx, rec); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if err := repo.UpdateBalances(ctx, core.Balance{
		ID:          id,
		OpeningCash: core.Money{Cents: 10},
		ClosingCash: core.Money{Cents: 4110},
	}); err != nil {
		t.Fatalf("UpdateBalances: %v", err)
	}

	got, _ := repo.Get(ctx, id)
	if got.CashSales.Cents != 4200 || got.WithdrawalKind != core.WithdrawalCash || got.Note != "corrected" {
		t.Errorf("input fields not updated: %+v", got)
	}
	if got.OpeningCash.Cents != 10 || got.ClosingCash.Cents != 4110 || got.Variance.Cents != 0 {
		t.Errorf("balances not updated: %+v", got)
	}
}

func TestSQLiteRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, err := repo.Get(ctx, 99); !errors.Is(err, core.ErrRecordNotFound) {
		t.Errorf("Get: expected ErrRecordNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, 99); !errors.Is(err, core.ErrRecordNotFound) {
		t.Errorf("Delete: expected ErrRecordNotFound, got %v", err)
	}
	if err := repo.Update(ctx, core.Record{ID: 99, Date: core.NewDate(2025, 1, 1)}); !errors.Is(err, core.ErrRecordNotFound) {
		t.Errorf("Update: expected ErrRecordNotFound, got %v", err)
	}
	if err := repo.UpdateBalances(ctx, core.Balance{ID: 99}); !errors.Is(err, core.ErrRecordNotFound) {
		t.Errorf("UpdateBalances: expected ErrRecordNotFound, got %v", err)
	}
}

func TestSQLiteRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	id, _ := repo.Insert(ctx, sample(core.NewDate(2025, 6, 1), 1, 1000))

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	list, _ := repo.ListAscending(ctx)
	if len(list) != 0 {
		t.Fatalf("expected empty table, got %d rows", len(list))
	}
}

func TestSQLiteRepository_LatestOnOrBefore(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, ok, err := repo.LatestOnOrBefore(ctx, core.NewDate(2025, 6, 1)); err != nil || ok {
		t.Fatalf("empty table: ok=%v err=%v", ok, err)
	}

	_, _ = repo.Insert(ctx, sample(core.NewDate(2025, 6, 1), 1, 100))
	second, _ := repo.Insert(ctx, sample(core.NewDate(2025, 6, 1), 2, 200))
	_, _ = repo.Insert(ctx, sample(core.NewDate(2025, 6, 3), 1, 300))

	got, ok, err := repo.LatestOnOrBefore(ctx, core.NewDate(2025, 6, 2))
	if err != nil || !ok {
		t.Fatalf("LatestOnOrBefore: ok=%v err=%v", ok, err)
	}
	if got.ID != second || got.ClosingCash.Cents != 200 {
		t.Errorf("expected record %d with closing 200, got %+v", second, got)
	}
}

func TestSQLiteRepository_CountByUserOnDate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	day := core.NewDate(2025, 6, 1)

	_, _ = repo.Insert(ctx, sample(day, 1, 100))
	_, _ = repo.Insert(ctx, sample(day, 1, 100))
	_, _ = repo.Insert(ctx, sample(day, 2, 100))
	_, _ = repo.Insert(ctx, sample(core.NewDate(2025, 6, 2), 1, 100))

	tests := []struct {
		user int64
		day  core.Date
		want int
	}{
		{1, day, 2},
		{2, day, 1},
		{3, day, 0},
		{1, core.NewDate(2025, 6, 2), 1},
	}
	for _, tt := range tests {
		got, err := repo.CountByUserOnDate(ctx, tt.user, tt.day)
		if err != nil {
			t.Fatalf("CountByUserOnDate: %v", err)
		}
		if got != tt.want {
			t.Errorf("user %d on %s: got %d, want %d", tt.user, tt.day, got, tt.want)
		}
	}
}

func TestSQLiteRepository_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "daybook.db")

	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	fixed := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }
	id, _ := repo.Insert(ctx, sample(core.NewDate(2025, 6, 1), 1, 100))
	_ = repo.Close()

	// migrations must be a no-op on an existing database
	repo, err = NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()

	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if !got.CreatedAt.Equal(fixed) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, fixed)
	}
}
