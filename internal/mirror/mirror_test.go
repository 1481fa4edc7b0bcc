package mirror

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"caixamei/internal/core"
	"caixamei/internal/events"
	"caixamei/internal/log"
)

type fakeSink struct {
	rows [][]any
	err  error
}

func (f *fakeSink) AppendRow(_ context.Context, values []any) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, values)
	return nil
}

func testLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func TestHandleAppendsTransactionRow(t *testing.T) {
	sink := &fakeSink{}
	w := NewWorker(sink, testLogger())

	msg := &events.RecordChangeMessage{
		Collection: events.CollectionTransactions,
		Op:         events.OpInsert,
		RecordID:   7,
		Transaction: &core.Transaction{
			ID: 7, Date: "2025-04-01", Kind: core.Income,
			Category: "Vendas", Description: "venda", Amount: 120.5,
		},
		Timestamp: time.Date(2025, 4, 1, 10, 30, 0, 0, time.UTC),
	}
	if err := w.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sink.rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(sink.rows))
	}
	row := sink.rows[0]
	if row[0] != "2025-04-01 10:30:00" || row[1] != events.OpInsert || row[2] != int64(7) {
		t.Fatalf("unexpected row prefix: %v", row)
	}
	if row[3] != "2025-04-01" || row[4] != "Receita" || row[7] != 120.5 {
		t.Fatalf("unexpected payload columns: %v", row)
	}
}

func TestHandleDeleteWithoutPayload(t *testing.T) {
	sink := &fakeSink{}
	w := NewWorker(sink, testLogger())

	msg := &events.RecordChangeMessage{
		Collection: events.CollectionTransactions,
		Op:         events.OpDelete,
		RecordID:   3,
		Timestamp:  time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC),
	}
	if err := w.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sink.rows) != 1 || len(sink.rows[0]) != 3 {
		t.Fatalf("expected bare row for delete, got %v", sink.rows)
	}
}

func TestHandleSkipsOtherCollections(t *testing.T) {
	sink := &fakeSink{}
	w := NewWorker(sink, testLogger())

	msg := events.NewRecordChangeMessage(events.CollectionCategories, events.OpInsert)
	if err := w.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sink.rows) != 0 {
		t.Fatalf("category changes must not be mirrored, got %v", sink.rows)
	}
}

func TestHandleSinkFailure(t *testing.T) {
	sink := &fakeSink{err: errors.New("quota")}
	w := NewWorker(sink, testLogger())

	msg := events.NewRecordChangeMessage(events.CollectionTransactions, events.OpInsert)
	if err := w.Handle(context.Background(), msg); err == nil {
		t.Fatalf("expected error so the delivery is requeued")
	}
}
