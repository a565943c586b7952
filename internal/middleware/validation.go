package middleware

import (
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxUtteranceLength bounds a single chat message in bytes.
const MaxUtteranceLength = 2000

// ValidateUtterance validates chat message text. Blank text is accepted
// here; the chat session ignores it.
func ValidateUtterance(text string) error {
	if len(text) > MaxUtteranceLength {
		return errors.New("message exceeds maximum length")
	}
	if !utf8.ValidString(text) {
		return errors.New("message must be valid UTF-8")
	}
	return nil
}

// ValidateSessionID validates a chat session ID.
func ValidateSessionID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid session ID format")
	}
	return nil
}

// ValidateMessageID validates a message ID.
func ValidateMessageID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid message ID format")
	}
	return nil
}
