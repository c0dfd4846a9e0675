package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithHelpers(t *testing.T) {
	logger := slog.Default()
	assert.NotNil(t, WithOperation(logger, "exchange"))
	assert.NotNil(t, WithService(logger, "calendar"))
	assert.NotNil(t, WithCommand(logger, "schedule"))
}

func TestAttrs(t *testing.T) {
	tests := []struct {
		name    string
		attr    slog.Attr
		wantKey string
		wantVal string
	}{
		{"operation", Operation("quick_add"), KeyOperation, "quick_add"},
		{"command", Command("schedule"), KeyCommand, "schedule"},
		{"adapter", Adapter("console"), KeyAdapter, "console"},
		{"session", Session("abc"), KeySession, "abc"},
		{"status", Status(StatusSuccess), KeyStatus, StatusSuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKey, tt.attr.Key)
			assert.Equal(t, tt.wantVal, tt.attr.Value.String())
		})
	}
}

func TestErr(t *testing.T) {
	attr := Err(errors.New("test error"))
	assert.Equal(t, KeyError, attr.Key)
	assert.Equal(t, "test error", attr.Value.String())

	// Empty Group has empty key
	assert.Equal(t, "", Err(nil).Key)
}

func TestAnonymizeUser(t *testing.T) {
	assert.Equal(t, "", AnonymizeUser(""))

	hash := AnonymizeUser("U123")
	assert.Len(t, hash, 21) // "user:" + 16 hex chars
	assert.True(t, strings.HasPrefix(hash, "user:"))
	assert.Equal(t, hash, AnonymizeUser("U123"), "hashing must be deterministic")
	assert.NotEqual(t, hash, AnonymizeUser("U456"))

	assert.Equal(t, KeyUserHash, UserHash("U123").Key)
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		token    string
		expected string
	}{
		{"", "<empty>"},
		{"abc123", "[token:6 chars]"},
		{"a_very_long_token_string", "[token:24 chars]"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeToken(tt.token))
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, levelVar, err := New(&buf, FormatJSON, "warn")
	require.NoError(t, err)

	logger.Info("dropped")
	assert.Empty(t, buf.String())

	logger.Warn("kept", Command("events"))
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "events", entry[KeyCommand])

	buf.Reset()
	levelVar.Set(slog.LevelDebug)
	logger.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(&buf, "", "info")
	require.NoError(t, err)

	logger.Info("hello", Adapter("console"))
	assert.Contains(t, buf.String(), "adapter=console")
}

func TestNew_UnknownFormat(t *testing.T) {
	_, _, err := New(&bytes.Buffer{}, "xml", "info")
	assert.Error(t, err)
}
