package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebugIsSuppressedUnlessVerbose(t *testing.T) {
	var buf bytes.Buffer
	SetWriterForAll(&buf, true)
	SetVerbose(false)
	t.Cleanup(func() { SetVerbose(false) })

	Debug("hidden %d", 1)
	assert.Empty(t, buf.String())

	SetVerbose(true)
	Debug("shown %d", 2)
	assert.Contains(t, buf.String(), "DEBUG shown 2")
}

func TestPlainWriterHasNoColors(t *testing.T) {
	var buf bytes.Buffer
	SetWriterForAll(&buf, true)

	Warn("careful")

	out := buf.String()
	assert.Contains(t, out, "WARN  careful")
	assert.False(t, strings.Contains(out, "\033["), "plain output must not contain ANSI escapes")
}

func TestAddWriterForAllFansOut(t *testing.T) {
	var first, second bytes.Buffer
	SetWriterForAll(&first, true)
	AddWriterForAll(&second)

	Info("hello")

	assert.Contains(t, first.String(), "hello")
	assert.Contains(t, second.String(), "hello")
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "ERROR", ERROR.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}
