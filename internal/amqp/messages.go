package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sync reasons carried on MonthSyncMessage.
const (
	ReasonEntrySaved = "entry_saved"
	ReasonRequested  = "requested"
	ReasonScheduled  = "scheduled"
)

// MonthSyncMessage asks the worker to rebuild and republish one month. The
// worker reads the ledger itself; the message carries no report data.
type MonthSyncMessage struct {
	ID        string    `json:"id"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMonthSyncMessage(year int, month time.Month, reason string) *MonthSyncMessage {
	return &MonthSyncMessage{
		ID:        uuid.NewString(),
		Year:      year,
		Month:     int(month),
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

// Period returns the message's year and month.
func (m *MonthSyncMessage) Period() (int, time.Month) {
	return m.Year, time.Month(m.Month)
}

// Validate accepts years 1..9999 and months 1..12, the same range the
// report service builds.
func (m *MonthSyncMessage) Validate() error {
	if m.Month < 1 || m.Month > 12 {
		return fmt.Errorf("invalid month %d", m.Month)
	}
	if m.Year < 1 || m.Year > 9999 {
		return fmt.Errorf("invalid year %d", m.Year)
	}
	return nil
}

// ErrPermanent marks a handler failure that redelivery cannot fix. Such
// messages are dropped instead of requeued.
var ErrPermanent = errors.New("permanent failure")

// Permanent wraps err so that errors.Is(err, ErrPermanent) holds.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

func (m *MonthSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MonthSyncMessageFromJSON decodes and validates a message body.
func MonthSyncMessageFromJSON(data []byte) (*MonthSyncMessage, error) {
	var msg MonthSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
