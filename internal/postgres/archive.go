package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pet-progression/internal/domain"
	"github.com/pet-progression/internal/events"
)

// EventRow is one archived domain event.
type EventRow struct {
	PlayerID   string
	Kind       events.Kind
	Payload    []byte
	OccurredAt time.Time
}

// TransactionRow is one archived currency transaction.
type TransactionRow struct {
	PlayerID    string
	Transaction domain.Transaction
	Balance     int
}

// DiscoveryRow is one archived discovery record.
type DiscoveryRow struct {
	PlayerID string
	Record   domain.DiscoveryRecord
}

// ArchiveBatch groups the rows written in one round trip.
type ArchiveBatch struct {
	Events       []EventRow
	Transactions []TransactionRow
	Discoveries  []DiscoveryRow
}

// Len returns the number of rows in the batch.
func (b ArchiveBatch) Len() int {
	return len(b.Events) + len(b.Transactions) + len(b.Discoveries)
}

// BuildBatch turns events into archive rows. Every event gets an event row;
// currency and discovery events also fill their own tables.
func BuildBatch(evts []events.Event) (ArchiveBatch, error) {
	var b ArchiveBatch
	for _, e := range evts {
		payload, err := json.Marshal(e)
		if err != nil {
			return ArchiveBatch{}, fmt.Errorf("marshaling %s event: %w", e.Kind(), err)
		}
		b.Events = append(b.Events, EventRow{
			PlayerID:   e.Player(),
			Kind:       e.Kind(),
			Payload:    payload,
			OccurredAt: e.At(),
		})

		switch ev := e.(type) {
		case events.CurrencyChanged:
			b.Transactions = append(b.Transactions, TransactionRow{
				PlayerID:    ev.PlayerID,
				Transaction: ev.Transaction,
				Balance:     ev.Balance,
			})
		case events.DiscoveryMade:
			for _, rec := range ev.Records {
				b.Discoveries = append(b.Discoveries, DiscoveryRow{PlayerID: ev.PlayerID, Record: rec})
			}
		}
	}
	return b, nil
}

// WriteArchive inserts a batch in one round trip. Rows already archived are
// skipped.
func (r *Repository) WriteArchive(ctx context.Context, b ArchiveBatch) error {
	if b.Len() == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, row := range b.Events {
		batch.Queue(`
			INSERT INTO progression_events (player_id, kind, payload, occurred_at)
			VALUES ($1, $2, $3, $4)
		`, row.PlayerID, string(row.Kind), row.Payload, row.OccurredAt)
	}
	for _, row := range b.Transactions {
		tx := row.Transaction
		batch.Queue(`
			INSERT INTO currency_transactions (id, player_id, type, amount, source, description, balance, occurred_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO NOTHING
		`, tx.ID, row.PlayerID, string(tx.Type), tx.Amount, tx.Source, tx.Description, row.Balance, tx.Timestamp)
	}
	for _, row := range b.Discoveries {
		rec := row.Record
		batch.Queue(`
			INSERT INTO discoveries (id, player_id, resource_id, rarity, quantity, occurred_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING
		`, rec.ID, row.PlayerID, rec.ResourceID, string(rec.Rarity), rec.Quantity, rec.Timestamp)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < b.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("writing archive: %w", err)
		}
	}
	return nil
}

// BatchWriter persists archive batches.
type BatchWriter interface {
	WriteArchive(ctx context.Context, b ArchiveBatch) error
}

// Archiver buffers bus events and writes them in batches off the publishing
// goroutine. Events that do not fit in the buffer are dropped and counted.
type Archiver struct {
	writer        BatchWriter
	ch            chan events.Event
	batchSize     int
	flushInterval time.Duration
	logger        *slog.Logger
	dropped       atomic.Int64

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewArchiver creates an archiver. A non-positive batchSize means 100.
func NewArchiver(w BatchWriter, batchSize int, flushInterval time.Duration, logger *slog.Logger) *Archiver {
	if batchSize <= 0 {
		batchSize = 100
	}
	if flushInterval <= 0 {
		flushInterval = time.Second
	}
	return &Archiver{
		writer:        w,
		ch:            make(chan events.Event, batchSize*10),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		logger:        logger.With("component", "archiver"),
	}
}

// Listener returns the bus listener feeding the archiver.
func (a *Archiver) Listener() events.Listener {
	return func(e events.Event) {
		select {
		case a.ch <- e:
		default:
			if n := a.dropped.Add(1); n%100 == 1 {
				a.logger.Warn("archive buffer full, dropping events", "dropped", n)
			}
		}
	}
}

// Dropped returns how many events were dropped.
func (a *Archiver) Dropped() int64 {
	return a.dropped.Load()
}

// Start begins the background writer
func (a *Archiver) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return
	}
	a.running = true
	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.run()
}

// Stop flushes buffered events and stops the writer
func (a *Archiver) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	close(a.stopCh)
	done := a.doneCh
	a.mu.Unlock()
	<-done
}

func (a *Archiver) run() {
	defer close(a.doneCh)

	ticker := time.NewTicker(a.flushInterval)
	defer ticker.Stop()

	pending := make([]events.Event, 0, a.batchSize)
	for {
		select {
		case e := <-a.ch:
			pending = append(pending, e)
			if len(pending) >= a.batchSize {
				pending = a.flush(pending)
			}
		case <-ticker.C:
			pending = a.flush(pending)
		case <-a.stopCh:
			for {
				select {
				case e := <-a.ch:
					pending = append(pending, e)
				default:
					a.flush(pending)
					return
				}
			}
		}
	}
}

func (a *Archiver) flush(pending []events.Event) []events.Event {
	if len(pending) == 0 {
		return pending
	}
	b, err := BuildBatch(pending)
	if err != nil {
		a.logger.Error("failed to build archive batch", "error", err)
		return pending[:0]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.writer.WriteArchive(ctx, b); err != nil {
		a.logger.Warn("failed to write archive batch", "rows", b.Len(), "error", err)
	}
	return pending[:0]
}
