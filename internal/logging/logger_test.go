package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerFiltersByLevel(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer
	log := NewLogger("filter", &out)
	log.SetLevel(Info)

	log.Debug("hidden")
	log.Info("shown %d", 1)
	log.Trace(5, "hidden too")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "I/filter[logger_test.go:")
	assert.True(t, strings.HasSuffix(lines[0], "] shown 1"))
}

func TestConfigureTagLevels(t *testing.T) {
	require.NoError(t, Configure("splitter=debug"))
	log := NewLogger("splitter", &bytes.Buffer{})
	assert.Equal(t, Debug, log.Verbosity())

	other := log.WithTag("configure-test-untagged")
	assert.Equal(t, Debug, other.Verbosity(), "untagged loggers inherit the parent level")

	assert.Error(t, Configure("x=loud"))
}

func TestConfigureAfterDerive(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer
	parent := NewLogger("", &out)
	parent.SetLevel(Info)
	early := parent.WithTag("configured-late")
	early.Debug("before")
	assert.Empty(t, out.String())

	require.NoError(t, Configure("configured-late=debug"))
	assert.True(t, early.Enabled(Debug))
	early.Debug("after")
	assert.Contains(t, out.String(), "D/configured-late[")

	quiet := parent.WithTag("quiet").WithDefaultLevel(Error)
	assert.Equal(t, Error, quiet.Verbosity())
	assert.False(t, quiet.Enabled(Warn))
}

func TestParseLevel(t *testing.T) {
	for s, want := range map[string]Level{"e": Error, "WARN": Warn, "7": Level(7), "trace": MaxLevel} {
		got, err := ParseLevel(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got)
	}
	_, err := ParseLevel("12")
	assert.Error(t, err)
	_, err = ParseLevel("loud")
	assert.Error(t, err)

	assert.Equal(t, "Warn", Warn.String())
	assert.Equal(t, "7", Level(7).String())
	assert.Equal(t, byte('7'), Level(7).letter())
}
