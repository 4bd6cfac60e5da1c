package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"daybook/internal/amqp"
	"daybook/internal/log"
	"daybook/internal/ports"
)

// LedgerSource renders the current ledger through a Renderer.
type LedgerSource interface {
	Render(ctx context.Context, r ports.Renderer) error
}

// MirrorWorker keeps an external view of the ledger (a spreadsheet) in step
// with the store, driven by ledger events and a periodic resync.
type MirrorWorker struct {
	source   LedgerSource
	renderer ports.Renderer
	logger   *log.Logger
	now      func() time.Time

	mu         sync.Mutex
	lastMirror time.Time
}

func NewMirrorWorker(source LedgerSource, renderer ports.Renderer) *MirrorWorker {
	return &MirrorWorker{
		source:   source,
		renderer: renderer,
		logger:   log.Default(log.ComponentWorker),
		now:      time.Now,
	}
}

// HandleLedgerChanged mirrors the ledger unless a mirror that started after
// the event was published already covered it.
func (w *MirrorWorker) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	w.mu.Lock()
	covered := !w.lastMirror.IsZero() && !msg.Timestamp.IsZero() && w.lastMirror.After(msg.Timestamp)
	w.mu.Unlock()
	if covered {
		w.logger.DebugContext(ctx, "Ledger event already mirrored",
			log.FieldMessageID, msg.MessageID,
			log.FieldReason, msg.Reason)
		return nil
	}
	return w.Mirror(ctx, "event:"+msg.Reason)
}

// Mirror renders the whole ledger once. Calls are serialized.
func (w *MirrorWorker) Mirror(ctx context.Context, trigger string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	started := w.now()
	if err := w.source.Render(ctx, w.renderer); err != nil {
		w.logger.ErrorContext(ctx, "Ledger mirror failed",
			log.FieldOperation, log.OpMirror,
			log.FieldReason, trigger,
			log.FieldError, err)
		return fmt.Errorf("mirror ledger: %w", err)
	}
	w.lastMirror = started

	w.logger.InfoContext(ctx, "Ledger mirrored",
		log.FieldOperation, log.OpMirror,
		log.FieldReason, trigger,
		log.FieldDuration, w.now().Sub(started).Milliseconds())
	return nil
}

// RunPeriodic mirrors immediately and then every interval until ctx ends.
// Failures are logged and retried on the next tick.
func (w *MirrorWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	_ = w.Mirror(ctx, "startup")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Periodic mirror stopped", log.FieldOperation, log.OpShutdown)
			return nil
		case <-ticker.C:
			_ = w.Mirror(ctx, "periodic")
		}
	}
}
