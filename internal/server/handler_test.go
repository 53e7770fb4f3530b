package server

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationIDFormat(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := newCorrelationID()

		assert.Len(t, id, 12, "correlation id is a fixed-width hex token")
		_, err := hex.DecodeString(id)
		require.NoError(t, err)

		assert.False(t, seen[id], "correlation ids must not repeat")
		seen[id] = true
	}
}
