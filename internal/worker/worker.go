// Package worker keeps the spreadsheet mirror caught up with the ledger by
// consuming transaction events.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tally/internal/amqp"
	"tally/internal/core"
)

// EventConsumer delivers transaction events to a handler until the context
// ends. *amqp.Client satisfies it.
type EventConsumer interface {
	ConsumeTransactionEvents(ctx context.Context, handler func(*amqp.TransactionEvent) error) error
}

// RowReader fetches ledger rows by id.
type RowReader interface {
	GetByID(ctx context.Context, id int64) (core.Transaction, error)
}

// Appender writes one row to the mirror.
type Appender interface {
	Append(ctx context.Context, t core.Transaction) error
}

// MirrorWorker consumes created events, re-reads the row from the store and
// appends it to the mirror. The mirror is append-only, so update and delete
// events are logged and skipped.
type MirrorWorker struct {
	events  EventConsumer
	store   RowReader
	mirror  Appender
	timeout time.Duration
}

func NewMirrorWorker(events EventConsumer, store RowReader, mirror Appender, timeout time.Duration) *MirrorWorker {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &MirrorWorker{
		events:  events,
		store:   store,
		mirror:  mirror,
		timeout: timeout,
	}
}

// Run blocks consuming events until the context is cancelled.
func (w *MirrorWorker) Run(ctx context.Context) error {
	return w.events.ConsumeTransactionEvents(ctx, func(ev *amqp.TransactionEvent) error {
		return w.Handle(ctx, ev)
	})
}

// Handle processes one event. Returning an error requeues the delivery.
func (w *MirrorWorker) Handle(ctx context.Context, ev *amqp.TransactionEvent) error {
	if ev.Kind != amqp.EventCreated {
		slog.InfoContext(ctx, "Skipping event for append-only mirror",
			"kind", ev.Kind, "id", ev.ID)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	t, err := w.store.GetByID(ctx, ev.ID)
	if errors.Is(err, core.ErrNotFound) {
		// The row was deleted before we got to it. Requeueing would loop.
		slog.WarnContext(ctx, "Transaction vanished before mirroring",
			"id", ev.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transaction %d: %w", ev.ID, err)
	}

	if err := w.mirror.Append(ctx, t); err != nil {
		return fmt.Errorf("mirror transaction %d: %w", ev.ID, err)
	}

	slog.InfoContext(ctx, "Mirrored transaction",
		"id", ev.ID, "date", t.Date, "category", t.Category)
	return nil
}
