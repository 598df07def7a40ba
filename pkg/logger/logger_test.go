package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(level Level) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return New(Options{Output: buf, Level: level}), buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	return line
}

func TestInfo_EmitsFlatJSON(t *testing.T) {
	log, buf := testLogger(LevelInfo)

	log.Info("application submitted",
		String("student_id", "s1"),
		Int("quota_used", 2),
		Bool("eligible", true),
	)

	line := decodeLine(t, buf)
	assert.Equal(t, "INFO", line["level"])
	assert.Equal(t, "application submitted", line["msg"])
	assert.Equal(t, "s1", line["student_id"])
	assert.Equal(t, float64(2), line["quota_used"])
	assert.Equal(t, true, line["eligible"])
	assert.NotEmpty(t, line["time"])
}

func TestWrite_RespectsLevel(t *testing.T) {
	log, buf := testLogger(LevelWarn)

	log.Debug("dropped")
	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.Error("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestWith_DerivedLoggerKeepsFields(t *testing.T) {
	base, buf := testLogger(LevelInfo)
	derived := base.With(String("component", "reconciler"))

	derived.Info("first")
	line := decodeLine(t, buf)
	assert.Equal(t, "reconciler", line["component"])

	// The base logger is untouched.
	buf.Reset()
	base.Info("second")
	line = decodeLine(t, buf)
	assert.NotContains(t, line, "component")
}

func TestWithRequestID(t *testing.T) {
	log, buf := testLogger(LevelInfo)

	log.WithRequestID("req-7").Info("handled")
	assert.Equal(t, "req-7", decodeLine(t, buf)["request_id"])
}

func TestFieldHelpers(t *testing.T) {
	assert.Equal(t, Field{Key: "error", Value: "boom"}, Err(errors.New("boom")))
	assert.Equal(t, Field{Key: "error", Value: nil}, Err(nil))
	assert.Equal(t, Field{Key: "elapsed", Value: "1.5s"}, Duration("elapsed", 1500*time.Millisecond))
	assert.Equal(t, "latency", Latency(time.Second).Key)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel(" WARNING "))
	assert.Equal(t, LevelFatal, ParseLevel("fatal"))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
}

func TestCaller_AddedWhenEnabled(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{Output: buf, Level: LevelInfo, AddCaller: true})

	log.Info("traced")
	caller, ok := decodeLine(t, buf)["caller"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(caller, "logger_test.go:"))
}

func TestContextRoundTrip(t *testing.T) {
	log, _ := testLogger(LevelInfo)

	ctx := WithContext(context.Background(), log)
	assert.Same(t, log, FromContext(ctx))

	// A bare context still yields a usable logger.
	assert.NotNil(t, FromContext(context.Background()))
}
