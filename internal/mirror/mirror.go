// Package mirror keeps an append-only journal of record changes in an
// external Google Sheets spreadsheet. It consumes the AMQP change events and
// writes one row per event, so the sheet doubles as an audit trail and an
// off-site backup of the transaction history.
package mirror

import (
	"context"
	"fmt"

	"caixamei/internal/events"
	"caixamei/internal/log"
)

// RowAppender is the output sink; the sheets client satisfies it, tests use
// a fake.
type RowAppender interface {
	AppendRow(ctx context.Context, values []any) error
}

type Worker struct {
	sink   RowAppender
	logger *log.Logger
}

func NewWorker(sink RowAppender, logger *log.Logger) *Worker {
	return &Worker{
		sink:   sink,
		logger: logger.WithComponent(log.ComponentMirror),
	}
}

// Handle processes one change event. Only transaction changes are mirrored;
// category and profile noise is acknowledged and skipped.
func (w *Worker) Handle(ctx context.Context, msg *events.RecordChangeMessage) error {
	if msg.Collection != events.CollectionTransactions {
		return nil
	}

	row := []any{
		msg.Timestamp.Format("2006-01-02 15:04:05"),
		msg.Op,
		msg.RecordID,
	}
	if tx := msg.Transaction; tx != nil {
		row = append(row, tx.Date, string(tx.Kind), tx.Category, tx.Description, tx.Amount)
	}

	if err := w.sink.AppendRow(ctx, row); err != nil {
		return fmt.Errorf("append mirror row: %w", err)
	}

	w.logger.Info("Mirrored record change",
		log.FieldOperation, log.OpMirror,
		log.FieldCollection, msg.Collection,
		"op", msg.Op,
		log.FieldRecordID, msg.RecordID)
	return nil
}
