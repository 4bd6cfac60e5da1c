package memory

import (
	"context"
	"sync"
	"time"

	"daybook/internal/core"
	"daybook/internal/ports"
)

var _ ports.RecordStore = (*Store)(nil)

// Store keeps records in insertion (id) order. Ids start at 1 and are never reused.
type Store struct {
	mu     sync.Mutex
	items  []core.Record
	nextID int64
	now    func() time.Time
}

func New() *Store {
	return &Store{nextID: 1, now: time.Now}
}

// NewWithRecords seeds the store; ids are reassigned in slice order.
func NewWithRecords(records ...core.Record) *Store {
	s := New()
	for _, r := range records {
		_, _ = s.Insert(context.Background(), r)
	}
	return s
}

func (s *Store) ListAscending(_ context.Context) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Record(nil), s.items...), nil
}

func (s *Store) Get(_ context.Context, id int64) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.Record{}, core.ErrRecordNotFound
	}
	return s.items[i], nil
}

func (s *Store) Insert(_ context.Context, r core.Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	r.ID = s.nextID
	s.nextID++
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	s.items = append(s.items, r)
	return r.ID, nil
}

func (s *Store) Update(_ context.Context, r core.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(r.ID)
	if i < 0 {
		return core.ErrRecordNotFound
	}
	cur := &s.items[i]
	cur.CashSales = r.CashSales
	cur.OnlineSales = r.OnlineSales
	cur.CashTakenOut = r.CashTakenOut
	cur.WithdrawalKind = r.WithdrawalKind
	cur.Note = r.Note
	cur.UpdatedAt = s.now().UTC()
	return nil
}

func (s *Store) UpdateBalances(_ context.Context, b core.Balance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(b.ID)
	if i < 0 {
		return core.ErrRecordNotFound
	}
	cur := &s.items[i]
	cur.OpeningCash = b.OpeningCash
	cur.ClosingCash = b.ClosingCash
	cur.Variance = b.Variance
	cur.UpdatedAt = s.now().UTC()
	return nil
}

func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.ErrRecordNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *Store) LatestOnOrBefore(_ context.Context, day core.Date) (core.Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].Date.OnOrBefore(day) {
			return s.items[i], true, nil
		}
	}
	return core.Record{}, false, nil
}

func (s *Store) CountByUserOnDate(_ context.Context, userID int64, day core.Date) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.items {
		if r.CreatedBy == userID && r.Date.String() == day.String() {
			n++
		}
	}
	return n, nil
}

func (s *Store) indexOf(id int64) int {
	for i, r := range s.items {
		if r.ID == id {
			return i
		}
	}
	return -1
}
