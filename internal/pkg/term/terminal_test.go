package term

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminal_ReadLine(t *testing.T) {
	var out bytes.Buffer
	tm := NewTerminalFrom(strings.NewReader("  42 \nnext\n"), &out)

	line, err := tm.ReadLine("User ID: ")
	require.NoError(t, err)
	assert.Equal(t, "42", line)
	assert.Equal(t, "User ID: ", out.String())

	line, err = tm.ReadLine("> ")
	require.NoError(t, err)
	assert.Equal(t, "next", line)

	_, err = tm.ReadLine("> ")
	assert.Error(t, err)
}

func TestTerminal_ReadLineWithoutNewline(t *testing.T) {
	tm := NewTerminalFrom(strings.NewReader("last"), &bytes.Buffer{})
	line, err := tm.ReadLine("")
	require.NoError(t, err)
	assert.Equal(t, "last", line)
}

func TestTerminal_ReadSecretFromPipe(t *testing.T) {
	t.Run("token from pipe", func(t *testing.T) {
		tm := NewTerminalFrom(strings.NewReader("eyJ.token.sig\n"), &bytes.Buffer{})
		assert.False(t, tm.IsTerminal())

		secret, err := tm.ReadSecret("Token: ")
		require.NoError(t, err)
		assert.Equal(t, "eyJ.token.sig", secret)
	})

	t.Run("empty token", func(t *testing.T) {
		tm := NewTerminalFrom(strings.NewReader("\n"), &bytes.Buffer{})
		_, err := tm.ReadSecret("Token: ")
		assert.Error(t, err)
	})
}

func TestTerminal_WidthFallback(t *testing.T) {
	tm := NewTerminalFrom(strings.NewReader(""), &bytes.Buffer{})
	assert.Equal(t, 80, tm.Width(80))
}
