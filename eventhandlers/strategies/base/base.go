package base

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tradebench/barsim/common"
	"github.com/tradebench/barsim/eventtypes/kline"
	"github.com/tradebench/barsim/eventtypes/signal"
)

// AmountKey is the custom setting every strategy accepts to fix its order
// quantity
const AmountKey = "amount"

// GetBaseData returns a DoNothing signal for the latest bar in history, ready
// for a strategy to set a direction on
func (s *Strategy) GetBaseData(history []*kline.Kline) (*signal.Signal, error) {
	if len(history) == 0 {
		return nil, common.ErrNilArguments
	}
	latest := history[len(history)-1]
	if latest == nil || latest.Base == nil {
		return nil, common.ErrNilEvent
	}
	sig := signal.New(latest, common.DoNothing)
	sig.Price = latest.Close
	sig.Amount = s.amount
	return sig, nil
}

// SetAmount parses the shared amount custom setting
func (s *Strategy) SetAmount(v any) error {
	amount, err := ParseDecimal(AmountKey, v)
	if err != nil {
		return err
	}
	if amount.IsNegative() {
		return fmt.Errorf("%w %v must not be negative: %v", ErrInvalidCustomSettings, AmountKey, v)
	}
	s.amount = amount
	return nil
}

// GetAmount returns the fixed order quantity, zero when sizing is deferred
func (s *Strategy) GetAmount() decimal.Decimal {
	return s.amount
}

// ClosePrices returns the close of every bar as float64 for indicator
// libraries
func ClosePrices(history []*kline.Kline) []float64 {
	resp := make([]float64, len(history))
	for i := range history {
		resp[i] = history[i].Close.InexactFloat64()
	}
	return resp
}

// ParseDecimal converts a numeric custom setting. Config files decode
// numbers as float64 or int depending on format, and grid values may be
// strings.
func ParseDecimal(key string, v any) (decimal.Decimal, error) {
	switch val := v.(type) {
	case float64:
		return decimal.NewFromFloat(val), nil
	case float32:
		return decimal.NewFromFloat32(val), nil
	case int:
		return decimal.NewFromInt(int64(val)), nil
	case int64:
		return decimal.NewFromInt(val), nil
	case int32:
		return decimal.NewFromInt32(val), nil
	case decimal.Decimal:
		return val, nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		if err == nil {
			return d, nil
		}
	}
	return decimal.Zero, fmt.Errorf("%w provided %v value could not be parsed: %v", ErrInvalidCustomSettings, key, v)
}

// ParsePeriod converts a custom setting into a positive whole number
func ParsePeriod(key string, v any) (int, error) {
	d, err := ParseDecimal(key, v)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() || !d.IsPositive() {
		return 0, fmt.Errorf("%w %v must be a positive whole number: %v", ErrInvalidCustomSettings, key, v)
	}
	return int(d.IntPart()), nil
}

// UnrecognisedSetting returns the error for a custom setting key a strategy
// does not support
func UnrecognisedSetting(k string, v any) error {
	return fmt.Errorf("%w unrecognised custom setting key %v with value %v. Cannot apply", ErrInvalidCustomSettings, k, v)
}

// FormatFloat renders an indicator value for signal reasons
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}
