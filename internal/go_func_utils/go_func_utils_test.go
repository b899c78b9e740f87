package go_func_utils

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeCall_ReturnsError(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	want := errors.New("device busy")
	err := SafeCall(logger, "tone", func() error { return want })

	assert.ErrorIs(t, err, want)
	assert.Empty(t, buf.String())
}

func TestSafeCall_RecoversPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	err := SafeCall(logger, "notify", func() error {
		panic("bus gone")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "notify panicked: bus gone")
	assert.Contains(t, buf.String(), "PANIC in notify")
}

func TestSafeGo_RunsFunction(t *testing.T) {
	logger := log.New(&bytes.Buffer{}, "", 0)
	done := make(chan struct{})

	SafeGo(logger, func() { close(done) })

	<-done
}
