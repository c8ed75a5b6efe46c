package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser_BirthDateBoundary(t *testing.T) {
	fixed := time.Date(2026, 10, 19, 0, 30, 0, 0, time.UTC)
	orig := now
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = orig })

	today := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	u, err := NewUser("testuser", "hash", "홍길동", today, "test@example.com")
	require.NoError(t, err)
	assert.Equal(t, today, u.BirthDate())

	_, err = NewUser("testuser", "hash", "홍길동", today.AddDate(0, 0, 1), "test@example.com")
	assert.ErrorIs(t, err, ErrInvalidBirthDate)
}
