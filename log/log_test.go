package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerbosityFiltersLowerPriorityLines(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbosity(LvlWarn)
	defer SetVerbosity(LvlInfo)

	l := NewModuleLogger(Peer)
	l.Info("should be filtered")
	l.Warn("should appear")

	out := buf.String()
	assert.NotContains(t, out, "should be filtered")
	assert.Contains(t, out, "should appear")
}

func TestLogLineIncludesModuleAndKeyValues(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbosity(LvlDetail)
	defer SetVerbosity(LvlInfo)

	l := NewModuleLogger(Simulator)
	l.Info("run complete", "events", 42)

	out := buf.String()
	assert.True(t, strings.Contains(out, "[simulator]"))
	assert.True(t, strings.Contains(out, "events=42"))
}
