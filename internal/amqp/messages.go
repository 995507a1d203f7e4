package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"siuang/internal/core"
)

// EventType names a ledger mutation.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// TransactionEvent is published after every ledger mutation. Consumers get
// enough to update their own totals without reading the ledger back.
type TransactionEvent struct {
	Type        EventType `json:"type"`
	ID          string    `json:"id"`
	Date        string    `json:"date,omitempty"`
	AmountMinor int64     `json:"amount_minor"`
	IsIncome    bool      `json:"is_income"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewTransactionEvent(t EventType, tx core.Transaction) *TransactionEvent {
	ev := &TransactionEvent{
		Type:        t,
		ID:          tx.ID,
		AmountMinor: tx.Amount.Cents,
		IsIncome:    tx.IsIncome,
		Timestamp:   time.Now().UTC(),
	}
	if !tx.Date.IsZero() {
		ev.Date = tx.Date.String()
	}
	return ev
}

func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ExportRequest asks the export worker to deliver a filtered subset. It only
// carries the filter and the size of the subset the API returned.
type ExportRequest struct {
	ID        string    `json:"id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Category  string    `json:"category,omitempty"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExportRequest(start, end, category string, count int) *ExportRequest {
	return &ExportRequest{
		ID:        uuid.NewString(),
		StartDate: start,
		EndDate:   end,
		Category:  category,
		Count:     count,
		Timestamp: time.Now().UTC(),
	}
}

func (m *ExportRequest) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExportRequestFromJSON(data []byte) (*ExportRequest, error) {
	var msg ExportRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
