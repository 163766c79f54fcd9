// Package services orchestrates ledger writes across SQLite and AMQP.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/dates"
	"tally/internal/storage"
)

// EventPublisher publishes transaction change events. *amqp.Client satisfies
// it; a nil publisher disables events.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, kind string, id int64) error
}

// TransactionService orchestrates transaction CRUD. Writes always commit to
// SQLite first; event publishing is best-effort and never fails the request.
type TransactionService struct {
	storage *storage.SQLiteRepository
	events  EventPublisher
}

func NewTransactionService(storage *storage.SQLiteRepository, events EventPublisher) *TransactionService {
	return &TransactionService{
		storage: storage,
		events:  events,
	}
}

// Create validates and saves a transaction, then publishes a created event.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	id, err := s.storage.Insert(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	t.ID = id
	if t.Currency == "" {
		t.Currency = core.DefaultCurrency
	}

	s.publish(ctx, amqp.EventCreated, id)

	return t, nil
}

// Get returns a single transaction by id.
func (s *TransactionService) Get(ctx context.Context, id int64) (core.Transaction, error) {
	return s.storage.GetByID(ctx, id)
}

// Update applies a partial update and publishes an updated event.
func (s *TransactionService) Update(ctx context.Context, id int64, patch core.TransactionPatch) (core.Transaction, error) {
	updated, err := s.storage.Update(ctx, id, patch)
	if err != nil {
		return core.Transaction{}, err
	}

	s.publish(ctx, amqp.EventUpdated, id)

	return updated, nil
}

// Delete removes a transaction and publishes a deleted event.
func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	if err := s.storage.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, amqp.EventDeleted, id)

	return nil
}

// List returns transactions in a date range, newest first. Empty bounds
// default to the current month to date.
func (s *TransactionService) List(ctx context.Context, start, end string) ([]core.Transaction, dates.Range, error) {
	rng, err := dates.Normalize(start, end)
	if err != nil {
		return nil, dates.Range{}, err
	}

	rows, err := s.storage.ListRange(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, dates.Range{}, fmt.Errorf("list transactions: %w", err)
	}

	return rows, rng, nil
}

// Search returns a page of transactions matching the filter plus the total
// match count.
func (s *TransactionService) Search(ctx context.Context, f storage.Filter, limit, offset int64) ([]core.Transaction, int64, error) {
	return s.storage.Search(ctx, f, limit, offset)
}

func (s *TransactionService) publish(ctx context.Context, kind string, id int64) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishTransactionEvent(ctx, kind, id); err != nil {
		// The local write already committed; consumers catch up later.
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"kind", kind, "id", id, "error", err)
	}
}

// Close closes the underlying storage connection.
func (s *TransactionService) Close() error {
	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			return fmt.Errorf("close storage: %w", err)
		}
	}
	return nil
}
