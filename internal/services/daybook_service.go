package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"daybook/internal/core"
	"daybook/internal/log"
	"daybook/internal/ports"
)

// Reasons carried by ledger.changed events.
const (
	ReasonAdd         = "add"
	ReasonEdit        = "edit"
	ReasonDelete      = "delete"
	ReasonRecalculate = "recalculate"
)

// DayBookService orchestrates daybook records across the store and the
// optional event publisher.
type DayBookService struct {
	store     ports.RecordStore
	publisher ports.EventPublisher
	logger    *log.Logger
}

// NewDayBookService wires the service. publisher may be nil.
func NewDayBookService(store ports.RecordStore, publisher ports.EventPublisher) *DayBookService {
	return &DayBookService{
		store:     store,
		publisher: publisher,
		logger:    log.Default(log.ComponentLedger),
	}
}

// Add appends today's record for rc.UserID. Opening cash is taken from the
// latest record dated on or before today; history is never rewritten.
func (s *DayBookService) Add(ctx context.Context, rc core.RequestContext, in core.RecordInput) (core.Record, error) {
	in = in.Normalize(rc.Privileged)
	if err := in.Validate(); err != nil {
		return core.Record{}, err
	}
	if err := rc.Today.Validate(); err != nil {
		return core.Record{}, fmt.Errorf("request date: %w", err)
	}

	if !rc.Privileged {
		submitted, err := s.HasSubmittedToday(ctx, rc)
		if err != nil {
			return core.Record{}, err
		}
		if submitted {
			return core.Record{}, core.ErrAlreadySubmitted
		}
	}

	var opening core.Money
	latest, ok, err := s.store.LatestOnOrBefore(ctx, rc.Today)
	if err != nil {
		return core.Record{}, fmt.Errorf("resolve opening cash: %w", err)
	}
	if ok {
		opening = latest.ClosingCash
	}

	rec := in.Apply(core.Record{Date: rc.Today, CreatedBy: rc.UserID})
	b := core.ComputeBalance(opening, rec)
	rec.OpeningCash, rec.ClosingCash, rec.Variance = b.OpeningCash, b.ClosingCash, b.Variance

	id, err := s.store.Insert(ctx, rec)
	if err != nil {
		return core.Record{}, fmt.Errorf("save record: %w", err)
	}
	rec.ID = id

	s.logger.InfoContext(ctx, "Record added", log.NewFields().
		WithOperation(log.OpAdd).
		WithUser(rc.UserID, rc.Privileged).
		WithRecord(id, rec.Date.String(), rec.CashSales.Cents, rec.OnlineSales.Cents, rec.CashTakenOut.Cents, rec.WithdrawalKind.String()).
		WithBalance(rec.OpeningCash.Cents, rec.ClosingCash.Cents).
		ToSlice()...)

	s.publish(ctx, ReasonAdd, id)

	if stored, err := s.store.Get(ctx, id); err == nil {
		return stored, nil
	}
	return rec, nil
}

// Edit replaces the user-entered fields of record id and recomputes the chain.
func (s *DayBookService) Edit(ctx context.Context, rc core.RequestContext, id int64, in core.RecordInput) (core.Record, error) {
	if !rc.Privileged {
		return core.Record{}, core.ErrForbidden
	}
	in = in.Normalize(true)
	if err := in.Validate(); err != nil {
		return core.Record{}, err
	}

	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return core.Record{}, fmt.Errorf("edit record %d: %w", id, err)
	}
	if err := s.store.Update(ctx, in.Apply(existing)); err != nil {
		return core.Record{}, fmt.Errorf("edit record %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "Record edited", log.NewFields().
		WithOperation(log.OpEdit).
		WithUser(rc.UserID, rc.Privileged).
		WithRecord(id, existing.Date.String(), in.CashSales.Cents, in.OnlineSales.Cents, in.CashTakenOut.Cents, in.WithdrawalKind.String()).
		ToSlice()...)

	if _, _, err := s.recalculate(ctx); err != nil {
		return core.Record{}, err
	}
	s.publish(ctx, ReasonEdit, id)

	updated, err := s.store.Get(ctx, id)
	if err != nil {
		return core.Record{}, fmt.Errorf("reload record %d: %w", id, err)
	}
	return updated, nil
}

// Delete removes record id and recomputes the remaining chain.
func (s *DayBookService) Delete(ctx context.Context, rc core.RequestContext, id int64) error {
	if !rc.Privileged {
		return core.ErrForbidden
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete record %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "Record deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldRecordID, id,
		log.FieldUserID, rc.UserID)

	if _, _, err := s.recalculate(ctx); err != nil {
		return err
	}
	s.publish(ctx, ReasonDelete, id)
	return nil
}

// Recalculate rebuilds the whole cash chain and persists every balance that
// differs from what is stored. It stops at the first failed write; balances
// written before that stay committed. When any balance was repaired a
// ledger.changed event (reason recalculate, record id 0) is published.
func (s *DayBookService) Recalculate(ctx context.Context) ([]core.Balance, error) {
	balances, updated, err := s.recalculate(ctx)
	if updated > 0 {
		s.publish(ctx, ReasonRecalculate, 0)
	}
	return balances, err
}

func (s *DayBookService) recalculate(ctx context.Context) ([]core.Balance, int, error) {
	records, err := s.store.ListAscending(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("recalculate: %w", err)
	}

	balances := core.Recalculate(records)
	updated := 0
	for i, b := range balances {
		if !b.Changed(records[i]) {
			continue
		}
		if err := s.store.UpdateBalances(ctx, b); err != nil {
			s.logger.ErrorContext(ctx, "Recalculation stopped",
				log.FieldOperation, log.OpRecalculate,
				log.FieldRecordID, b.ID,
				log.FieldUpdated, updated,
				log.FieldError, err)
			return nil, updated, fmt.Errorf("recalculate: persist record %d: %w", b.ID, err)
		}
		updated++
	}

	s.logger.DebugContext(ctx, "Ledger recalculated",
		log.FieldOperation, log.OpRecalculate,
		log.FieldRecords, len(balances),
		log.FieldUpdated, updated)

	return balances, updated, nil
}

// Get returns one record.
func (s *DayBookService) Get(ctx context.Context, id int64) (core.Record, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return core.Record{}, fmt.Errorf("get record %d: %w", id, err)
	}
	return rec, nil
}

// Ledger returns every record in ascending id order with the online side
// ledger computed over them.
func (s *DayBookService) Ledger(ctx context.Context) (core.Ledger, error) {
	records, err := s.store.ListAscending(ctx)
	if err != nil {
		return core.Ledger{}, fmt.Errorf("load ledger: %w", err)
	}
	return core.NewLedger(records), nil
}

// Render hands the current ledger to r.
func (s *DayBookService) Render(ctx context.Context, r ports.Renderer) error {
	ledger, err := s.Ledger(ctx)
	if err != nil {
		return err
	}
	if err := r.Render(ctx, ledger); err != nil {
		return fmt.Errorf("render ledger: %w", err)
	}
	return nil
}

// HasSubmittedToday reports whether rc.UserID already added a record today.
func (s *DayBookService) HasSubmittedToday(ctx context.Context, rc core.RequestContext) (bool, error) {
	n, err := s.store.CountByUserOnDate(ctx, rc.UserID, rc.Today)
	if err != nil {
		return false, fmt.Errorf("check today's submission: %w", err)
	}
	return n > 0, nil
}

func (s *DayBookService) publish(ctx context.Context, reason string, id int64) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "Event publisher not available, skipping ledger event", log.FieldReason, reason)
		return
	}
	if err := s.publisher.PublishLedgerChanged(ctx, reason, id); err != nil {
		// the mutation is already stored
		s.logger.ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldReason, reason,
			log.FieldRecordID, id,
			log.FieldError, err)
	}
}

// Close closes the store and publisher when they hold resources.
func (s *DayBookService) Close() error {
	var errs []error

	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close daybook service: %w", errors.Join(errs...))
	}
	return nil
}
