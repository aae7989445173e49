package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDueDate(t *testing.T) {
	t.Run("empty is optional", func(t *testing.T) {
		due, err := parseDueDate("")
		require.NoError(t, err)
		assert.Nil(t, due)
	})

	t.Run("valid date", func(t *testing.T) {
		due, err := parseDueDate("2026-09-01")
		require.NoError(t, err)
		require.NotNil(t, due)
		assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), *due)
	})

	t.Run("garbage rejected before any store mutation", func(t *testing.T) {
		for _, raw := range []string{"tomorrow", "01-09-2026", "2026-13-40"} {
			_, err := parseDueDate(raw)
			assert.Error(t, err, raw)
		}
	})
}
