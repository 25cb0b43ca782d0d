package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pet-progression/internal/domain"
	"github.com/pet-progression/internal/events"
)

type recordingWriter struct {
	mu      sync.Mutex
	batches []ArchiveBatch
	err     error
}

func (w *recordingWriter) WriteArchive(_ context.Context, b ArchiveBatch) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.batches = append(w.batches, b)
	return w.err
}

func (w *recordingWriter) rows() (evts, txs, discoveries int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, b := range w.batches {
		evts += len(b.Events)
		txs += len(b.Transactions)
		discoveries += len(b.Discoveries)
	}
	return
}

func header() events.Header {
	return events.Header{PlayerID: "p1", Timestamp: time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)}
}

func TestBuildBatch(t *testing.T) {
	b, err := BuildBatch([]events.Event{
		events.CurrencyChanged{Header: header(), Transaction: domain.Transaction{ID: "tx1", Amount: 25}, Balance: 25},
		events.DiscoveryMade{Header: header(), Records: []domain.DiscoveryRecord{{ID: "d1"}, {ID: "d2"}}},
		events.LevelUp{Header: header(), From: 1, To: 2},
	})
	require.NoError(t, err)

	assert.Len(t, b.Events, 3)
	assert.Len(t, b.Transactions, 1)
	assert.Len(t, b.Discoveries, 2)
	assert.Equal(t, 6, b.Len())
	assert.Equal(t, events.KindLevelUp, b.Events[2].Kind)
	assert.Contains(t, string(b.Events[2].Payload), `"to":2`)
	assert.Equal(t, "p1", b.Transactions[0].PlayerID)
}

func TestArchiver_FlushesOnStop(t *testing.T) {
	w := &recordingWriter{}
	a := NewArchiver(w, 50, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	bus := events.NewBus(nil)
	bus.Subscribe(a.Listener())

	a.Start()
	for i := 0; i < 5; i++ {
		bus.Publish(events.LevelUp{Header: header(), From: i, To: i + 1})
	}
	bus.Publish(events.CurrencyChanged{Header: header(), Transaction: domain.Transaction{ID: "tx"}})
	a.Stop()

	evts, txs, _ := w.rows()
	assert.Equal(t, 6, evts)
	assert.Equal(t, 1, txs)
}

func TestArchiver_FlushesFullBatches(t *testing.T) {
	w := &recordingWriter{}
	a := NewArchiver(w, 2, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	listener := a.Listener()

	a.Start()
	for i := 0; i < 4; i++ {
		listener(events.LevelUp{Header: header()})
	}
	require.Eventually(t, func() bool {
		evts, _, _ := w.rows()
		return evts == 4
	}, time.Second, 5*time.Millisecond)
	a.Stop()
}

func TestArchiver_DropsWhenFull(t *testing.T) {
	w := &recordingWriter{err: errors.New("db down")}
	a := NewArchiver(w, 1, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	listener := a.Listener()

	// Not started: the buffer of 10 fills and the rest are dropped.
	for i := 0; i < 15; i++ {
		listener(events.LevelUp{Header: header()})
	}
	assert.Equal(t, int64(5), a.Dropped())

	a.Start()
	a.Stop()
	evts, _, _ := w.rows()
	assert.Equal(t, 10, evts)
}
