package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACSHA256(t *testing.T) {
	t.Parallel()

	// RFC 4231 test case 2.
	h := NewHMACSHA256("Jefe")
	got, err := h.Hash("what do ya want for nothing?")
	require.NoError(t, err)
	assert.Equal(t, "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843", string(got))

	assert.True(t, h.Verify(string(got), "what do ya want for nothing?"))
	assert.False(t, h.Verify(string(got), "what do ya want for something?"))

	other, err := NewHMACSHA256("other").Hash("what do ya want for nothing?")
	require.NoError(t, err)
	assert.NotEqual(t, got, other)
}
