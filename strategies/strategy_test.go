package strategies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	Register(Noop{})

	s, ok := Get("noop")
	require.True(t, ok)
	assert.Equal(t, "noop", s.Name())

	_, ok = Get("missing")
	assert.False(t, ok)

	assert.Contains(t, List(), "noop")
}
