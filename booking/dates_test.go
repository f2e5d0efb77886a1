package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRange(t *testing.T) {
	t.Run("plain pair", func(t *testing.T) {
		in, out, err := ParseDateRange("20.11.2025 25.11.2025")
		require.NoError(t, err)
		assert.Equal(t, "2025-11-20", in.Format("2006-01-02"))
		assert.Equal(t, "2025-11-25", out.Format("2006-01-02"))
	})

	t.Run("dates embedded in a sentence", func(t *testing.T) {
		in, out, err := ParseDateRange("С 20.11.2025 по 25.11.2025")
		require.NoError(t, err)
		assert.Equal(t, "2025-11-20", in.Format("2006-01-02"))
		assert.Equal(t, "2025-11-25", out.Format("2006-01-02"))
	})

	t.Run("extra tokens ignored", func(t *testing.T) {
		in, out, err := ParseDateRange("01.12.2025 - 05.12.2025, а ещё 20.12.2025")
		require.NoError(t, err)
		assert.Equal(t, "2025-12-01", in.Format("2006-01-02"))
		assert.Equal(t, "2025-12-05", out.Format("2006-01-02"))
	})

	t.Run("single date", func(t *testing.T) {
		_, _, err := ParseDateRange("20.11.2025")
		assert.ErrorIs(t, err, ErrUnparseableDates)
	})

	t.Run("no dates at all", func(t *testing.T) {
		_, _, err := ParseDateRange("скоро, на выходных")
		assert.ErrorIs(t, err, ErrUnparseableDates)
	})

	t.Run("impossible calendar date", func(t *testing.T) {
		_, _, err := ParseDateRange("40.13.2025 41.13.2025")
		assert.ErrorIs(t, err, ErrUnparseableDates)
	})

	t.Run("reversed order", func(t *testing.T) {
		_, _, err := ParseDateRange("25.11.2025 20.11.2025")
		assert.ErrorIs(t, err, ErrInvalidRange)
		assert.NotErrorIs(t, err, ErrUnparseableDates)
	})

	t.Run("equal dates", func(t *testing.T) {
		_, _, err := ParseDateRange("20.11.2025 20.11.2025")
		assert.ErrorIs(t, err, ErrInvalidRange)
	})
}

func TestParseSubmittedDate(t *testing.T) {
	iso, err := parseSubmittedDate("2025-11-20")
	require.NoError(t, err)
	assert.Equal(t, "2025-11-20", iso.Format(ISODateLayout))

	dotted, err := parseSubmittedDate("20.11.2025")
	require.NoError(t, err)
	assert.Equal(t, "2025-11-20", dotted.Format(ISODateLayout))

	_, err = parseSubmittedDate("november 20th")
	assert.ErrorIs(t, err, ErrInvalidRange)
}
