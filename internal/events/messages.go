package events

import (
	"encoding/json"
	"time"

	"caixamei/internal/core"
	"caixamei/internal/store"
)

// Record-change ops, as the stores report them.
const (
	OpInsert = store.OpInsert
	OpUpdate = store.OpUpdate
	OpDelete = store.OpDelete
)

// Collections that emit change events.
const (
	CollectionTransactions = "transactions"
	CollectionCategories   = "categories"
)

// RecordChangeMessage announces one successful mutation. The payload carries
// the record itself (or the patch fields) so consumers such as the sheets
// mirror do not need read access to the backend.
type RecordChangeMessage struct {
	Collection  string            `json:"collection"`
	Op          string            `json:"op"`
	RecordID    int64             `json:"record_id,omitempty"`
	Transaction *core.Transaction `json:"transaction,omitempty"`
	Category    *core.Category    `json:"category,omitempty"`
	Fields      map[string]any    `json:"fields,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// NewRecordChangeMessage stamps the message with the current time.
func NewRecordChangeMessage(collection, op string) *RecordChangeMessage {
	return &RecordChangeMessage{
		Collection: collection,
		Op:         op,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *RecordChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangeMessageFromJSON parses a message from JSON bytes.
func RecordChangeMessageFromJSON(data []byte) (*RecordChangeMessage, error) {
	var msg RecordChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
