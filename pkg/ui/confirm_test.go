package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleConfirmerAccepts(t *testing.T) {
	for _, answer := range []string{"y\n", "Y\n", "yes\n", "YES\n"} {
		out := &bytes.Buffer{}
		c := &ConsoleConfirmer{In: strings.NewReader(answer), Out: out}

		ok, err := c.Confirm("Move 2 target(s)")
		require.NoError(t, err)
		assert.True(t, ok, "answer %q", answer)
		assert.Contains(t, out.String(), "Move 2 target(s)")
		assert.Contains(t, out.String(), "[y/N]")
	}
}

func TestConsoleConfirmerDefaultsToNo(t *testing.T) {
	for _, answer := range []string{"n\n", "no\n", "\n", "whatever\n"} {
		c := &ConsoleConfirmer{In: strings.NewReader(answer), Out: &bytes.Buffer{}}

		ok, err := c.Confirm("preview")
		require.NoError(t, err)
		assert.False(t, ok, "answer %q", answer)
	}
}

func TestConsoleConfirmerTreatsEOFAsDeclined(t *testing.T) {
	c := &ConsoleConfirmer{In: strings.NewReader(""), Out: &bytes.Buffer{}}

	ok, err := c.Confirm("preview")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAutoApprove(t *testing.T) {
	ok, err := AutoApprove{}.Confirm("anything")
	require.NoError(t, err)
	assert.True(t, ok)
}
