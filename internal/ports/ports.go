package ports

import (
	"context"

	"daybook/internal/core"
)

// Ports for outbound adapters.
type (
	// RecordStore is the relational table of daybook records, keyed by a
	// monotonic id assigned on insert.
	RecordStore interface {
		// ListAscending returns every record ordered by id.
		ListAscending(ctx context.Context) ([]core.Record, error)
		// Get returns core.ErrRecordNotFound when id does not exist.
		Get(ctx context.Context, id int64) (core.Record, error)
		// Insert stores r and returns the new id. r.ID is ignored.
		Insert(ctx context.Context, r core.Record) (int64, error)
		// Update writes the user-entered fields and note of r.ID.
		Update(ctx context.Context, r core.Record) error
		// UpdateBalances writes the derived cash fields of one record.
		UpdateBalances(ctx context.Context, b core.Balance) error
		// Delete returns core.ErrRecordNotFound when id does not exist.
		Delete(ctx context.Context, id int64) error
		// LatestOnOrBefore returns the highest-id record dated on or before day.
		LatestOnOrBefore(ctx context.Context, day core.Date) (core.Record, bool, error)
		// CountByUserOnDate counts records created by userID on day.
		CountByUserOnDate(ctx context.Context, userID int64, day core.Date) (int, error)
	}

	// RoleChecker is supplied by the host and answers the only role question
	// the daybook needs.
	RoleChecker interface {
		IsPrivileged(ctx context.Context, userID int64) (bool, error)
	}

	// Renderer presents the ledger somewhere (terminal table, spreadsheet...).
	Renderer interface {
		Render(ctx context.Context, ledger core.Ledger) error
	}

	// EventPublisher announces ledger mutations to other processes.
	EventPublisher interface {
		PublishLedgerChanged(ctx context.Context, reason string, recordID int64) error
	}
)
