package domain

import (
	"errors"
	"fmt"
	"time"
)

// ShareTTL is how long a shared note stays retrievable after creation.
const ShareTTL = 30 * 24 * time.Hour

// ShareKeyPrefix namespaces share records in the content store.
const ShareKeyPrefix = "jot:"

var (
	// ErrValidation is returned when a note cannot be shared as submitted.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when an identifier was never written or has expired.
	ErrNotFound = errors.New("share not found")

	// ErrInternal wraps store and rendering failures surfaced to callers.
	ErrInternal = errors.New("internal error")

	// ErrConflict is returned by create-only store writes when the key is taken.
	ErrConflict = errors.New("key already exists")
)

// Share represents a stored snapshot of a note reachable by its identifier.
type Share struct {
	// ID is the short random identifier used in share links.
	ID string `json:"id"`

	// Content is the HTML of the note, stored and served verbatim.
	Content string `json:"content"`

	// CreatedAt is when the share was written.
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is when the store stops returning the share.
	ExpiresAt time.Time `json:"expires_at"`
}

// NewShare builds a share record created at now.
func NewShare(id, content string, now time.Time) Share {
	return Share{
		ID:        id,
		Content:   content,
		CreatedAt: now,
		ExpiresAt: now.Add(ShareTTL),
	}
}

// ShareKey returns the store key for a share identifier.
// Format: jot:{id}
func ShareKey(id string) string {
	return ShareKeyPrefix + id
}

// UserError pairs a sentinel error with the message shown to end users.
type UserError struct {
	Kind    error
	Message string
	Err     error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Is makes errors.Is match the sentinel kind.
func (e *UserError) Is(target error) bool {
	return target == e.Kind
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// Validation returns an ErrValidation carrying a user-visible message.
func Validation(message string) error {
	return &UserError{Kind: ErrValidation, Message: message}
}

// NotFound returns an ErrNotFound carrying a user-visible message.
func NotFound(message string) error {
	return &UserError{Kind: ErrNotFound, Message: message}
}

// Internal returns an ErrInternal carrying a user-visible message and the cause.
func Internal(message string, cause error) error {
	return &UserError{Kind: ErrInternal, Message: message, Err: cause}
}

// Message returns the user-visible message of err, or fallback when err
// carries none.
func Message(err error, fallback string) string {
	var ue *UserError
	if errors.As(err, &ue) && ue.Message != "" {
		return ue.Message
	}
	return fallback
}
