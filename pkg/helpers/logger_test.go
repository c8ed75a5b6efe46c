package helpers

import (
	"errors"
	"testing"

	"github.com/samber/oops"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogErrorFlattensOops(t *testing.T) {
	logger, hook := test.NewNullLogger()

	err := oops.Code("USER_REPO_QUERY_FAILED").With("login_id", "testuser1").Wrap(errors.New("timeout"))
	LogError(logger, "lookup failed", err, logrus.Fields{"request_id": "r-1"})

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "lookup failed", entry.Message)
	assert.Equal(t, "USER_REPO_QUERY_FAILED", entry.Data["code"])
	assert.Equal(t, "testuser1", entry.Data["login_id"])
	assert.Equal(t, "r-1", entry.Data["request_id"])
	assert.Contains(t, entry.Data["error"], "timeout")
}

func TestLogErrorPlainError(t *testing.T) {
	logger, hook := test.NewNullLogger()

	LogError(logger, "failed", errors.New("boom"), nil)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "boom", entry.Data["error"])
	assert.NotContains(t, entry.Data, "code")
}
