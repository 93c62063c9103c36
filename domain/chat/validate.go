package chat

import (
	"strings"
	"unicode/utf8"
)

// Validation limits, applied after trimming surrounding whitespace.
const (
	MaxSenderLength = 50
	MaxBodyLength   = 500
)

// ValidateMessage checks a server-stamped message before it may be
// persisted or broadcast. The returned ValidationError names every
// failing field so the sender can be told exactly what was wrong.
func ValidateMessage(sender, body, roomID string) error {
	var fields []string

	sender = strings.TrimSpace(sender)
	if sender == "" {
		fields = append(fields, "sender")
	} else if utf8.RuneCountInString(sender) > MaxSenderLength {
		fields = append(fields, "sender")
	}

	body = strings.TrimSpace(body)
	if body == "" {
		fields = append(fields, "body")
	} else if utf8.RuneCountInString(body) > MaxBodyLength {
		fields = append(fields, "body")
	}

	if strings.TrimSpace(roomID) == "" {
		fields = append(fields, "room_id")
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
