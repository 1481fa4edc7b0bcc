package events

import (
	"testing"

	"caixamei/internal/core"
)

func TestRecordChangeMessageRoundTrip(t *testing.T) {
	msg := NewRecordChangeMessage(CollectionTransactions, OpInsert)
	if msg.Timestamp.IsZero() {
		t.Fatalf("expected stamped timestamp")
	}
	msg.RecordID = 42
	msg.Transaction = &core.Transaction{
		ID: 42, Date: "2025-05-01", Kind: core.Expense,
		Category: "Impostos", Description: "DAS mensal", Amount: 75.9, OwnerID: "user-1",
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := RecordChangeMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Collection != CollectionTransactions || got.Op != OpInsert || got.RecordID != 42 {
		t.Fatalf("unexpected envelope: %+v", got)
	}
	if got.Transaction == nil || got.Transaction.Amount != 75.9 || got.Transaction.Kind != core.Expense {
		t.Fatalf("payload did not survive: %+v", got.Transaction)
	}
	if got.Category != nil || got.Fields != nil {
		t.Fatalf("unexpected extra payload: %+v", got)
	}
}

func TestRecordChangeMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := RecordChangeMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}
