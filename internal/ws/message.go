package ws

import (
	"time"

	"github.com/HerbHall/printwatch/internal/notify"
)

// MessageType discriminates WebSocket messages.
type MessageType string

// MessagePrinterAlert carries a printer state change.
const MessagePrinterAlert MessageType = notify.EventPrinterAlert

// Message is the flat JSON frame exchanged with subscribers.
type Message struct {
	Type      MessageType `json:"type"`
	PrinterID string      `json:"printer_id"`
	Message   string      `json:"message"`
	Status    string      `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
}

// FromEvent converts a relay event into a wire message.
func FromEvent(e notify.Event) Message {
	return Message{
		Type:      MessageType(e.Type),
		PrinterID: e.DeviceID,
		Message:   e.Message,
		Status:    e.Status,
		Timestamp: e.Timestamp,
	}
}
