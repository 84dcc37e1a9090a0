package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(&buf, "warn", "json")
	require.NoError(t, err)

	logger.Info().Msg("dropped")
	logger.Warn().Str("quiz_id", "q1").Msg("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "q1", entry["quiz_id"])
}

func TestNewWithWriterRejectsUnknownLevel(t *testing.T) {
	_, err := NewWithWriter(&bytes.Buffer{}, "loud", "json")
	assert.Error(t, err)
}

func TestGormLoggerForwardsErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	NewGormLogger(logger).Error(context.Background(), "relation %q does not exist", "quizzes")

	assert.Contains(t, buf.String(), `"component":"gorm"`)
	assert.Contains(t, buf.String(), `relation \"quizzes\" does not exist`)
}
