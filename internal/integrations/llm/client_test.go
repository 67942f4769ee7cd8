package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew_Validates(t *testing.T) {
	_, err := New("", "gpt-4o-mini")
	require.Error(t, err)

	_, err = New("sk-test", " ")
	require.Error(t, err)

	c, err := New("sk-test", "gpt-4o-mini")
	require.NoError(t, err)
	require.Equal(t, defaultTimeout, c.timeout)
}

func TestWithTimeout(t *testing.T) {
	c, err := New("sk-test", "gpt-4o-mini", WithTimeout(3*time.Second))
	require.NoError(t, err)
	require.Equal(t, 3*time.Second, c.timeout)
}
