package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShareKey(t *testing.T) {
	assert.Equal(t, "jot:Ab3x9KT2cQ", ShareKey("Ab3x9KT2cQ"))
}

func TestNewShare_Expiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewShare("abc", "<p>hi</p>", now)

	assert.Equal(t, now.Add(2592000*time.Second), s.ExpiresAt)
	assert.Equal(t, now, s.CreatedAt)
}

func TestUserError_MatchesKind(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("create: %w", Internal("Failed to create share", cause))

	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Failed to create share", Message(err, "fallback"))

	assert.ErrorIs(t, Validation("Content is required"), ErrValidation)
	assert.Equal(t, "fallback", Message(errors.New("plain"), "fallback"))
}
