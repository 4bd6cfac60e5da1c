package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LedgerChangedType is the AMQP message type of ledger events.
const LedgerChangedType = "ledger.changed"

// LedgerChangedMessage tells consumers the ledger moved. It carries no
// balances; consumers reload the ledger from the store.
type LedgerChangedMessage struct {
	MessageID string    `json:"message_id"`
	Type      string    `json:"type"`
	Reason    string    `json:"reason"`
	RecordID  int64     `json:"record_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerChangedMessage(reason string, recordID int64) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		MessageID: uuid.NewString(),
		Type:      LedgerChangedType,
		Reason:    reason,
		RecordID:  recordID,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON decodes a message and rejects foreign types.
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Type != LedgerChangedType {
		return nil, fmt.Errorf("unexpected message type %q", msg.Type)
	}
	return &msg, nil
}
