package ingress

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsirotkin256/matchcore/engine"
)

func TestParseTicksScalesDecimal(t *testing.T) {
	ticks, err := ParseTicks("123.45", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(12345), ticks)
}

func TestParseTicksWholeNumber(t *testing.T) {
	ticks, err := ParseTicks("50", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), ticks)
}

func TestParseTicksRejectsExtraPrecision(t *testing.T) {
	_, err := ParseTicks("1.005", 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrInputInvalid)
}

func TestParseTicksRejectsMalformed(t *testing.T) {
	_, err := ParseTicks("not-a-number", 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrInputInvalid)
}

func TestFormatTicksRoundTrip(t *testing.T) {
	got, err := decimal.NewFromString(FormatTicks(12345, 2))
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("123.45")))

	got, err = decimal.NewFromString(FormatTicks(5000, 2))
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("50")))
}
