package utils

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeferredWriter_Flush(t *testing.T) {
	d := &DeferredWriter{}

	buf := []byte("first\n")
	_, err := d.Write(buf)
	require.NoError(t, err)
	buf[0] = 'X' // caller reuses its buffer

	_, err = d.Write([]byte("second\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, d.Len())

	var out bytes.Buffer
	require.NoError(t, d.Flush(&out))
	assert.Equal(t, "first\nsecond\n", out.String())
	assert.Equal(t, 0, d.Len())
}

func TestDeferredWriter_ReplaysZerologEvents(t *testing.T) {
	d := &DeferredWriter{}
	logger := zerolog.New(d)
	logger.Info().Str("component", "topics").Msg("topics loaded")

	var out bytes.Buffer
	require.NoError(t, d.Flush(zerolog.ConsoleWriter{Out: &out, NoColor: true}))
	assert.Contains(t, out.String(), "topics loaded")
	assert.Contains(t, out.String(), "component=topics")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestDeferredWriter_FlushError(t *testing.T) {
	d := &DeferredWriter{}
	_, _ = d.Write([]byte("x"))
	assert.Error(t, d.Flush(failingWriter{}))
}
