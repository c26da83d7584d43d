package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	// ErrSupportNotClosable narrows ErrForbidden: Help Center
	// conversations may be cleared but never closed.
	ErrSupportNotClosable = fmt.Errorf("support conversations cannot be closed: %w", ErrForbidden)

	// ErrAlreadyClosed is a benign outcome: the caller raced another
	// closer. Handlers report it as success with the existing stamp.
	ErrAlreadyClosed = errors.New("already_closed")

	// ErrConversationClosed rejects writes into a closed conversation,
	// which is read-only for every role within its visibility window.
	ErrConversationClosed = errors.New("conversation_closed")

	ErrAlreadyClaimed  = errors.New("already_claimed")
	ErrAlreadyResolved = errors.New("already_resolved")
)
