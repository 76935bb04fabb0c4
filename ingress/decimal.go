package ingress

import (
	"github.com/shopspring/decimal"

	"github.com/dsirotkin256/matchcore/engine"
)

// ParseTicks parses a decimal price or quantity string and scales it to
// an integer tick count. scale is the number of decimal places the
// market trades at: a price of "123.45" with scale 2 becomes 12345
// ticks. Values with more precision than the configured scale are
// rejected rather than silently truncated, so every comparison inside
// the engine stays exact integer arithmetic.
func ParseTicks(raw string, scale int32) (int64, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, engine.InputInvalidf("invalid decimal value %q: %v", raw, err)
	}
	scaled := d.Shift(scale)
	if !scaled.IsInteger() {
		return 0, engine.InputInvalidf("value %q has more precision than the configured scale", raw)
	}
	return scaled.IntPart(), nil
}

// FormatTicks renders an integer tick count back to a decimal string at
// the given scale, for responses that echo price/quantity to clients.
func FormatTicks(ticks int64, scale int32) string {
	return decimal.New(ticks, -scale).String()
}
