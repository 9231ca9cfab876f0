package event

import (
	"fmt"
	"strings"
	"time"
)

// GetOffset returns the offset
func (b *Base) GetOffset() int64 {
	return b.Offset
}

// SetOffset sets the offset
func (b *Base) SetOffset(o int64) {
	b.Offset = o
}

// GetTime returns the time
func (b *Base) GetTime() time.Time {
	return b.Time
}

// GetSymbol returns the instrument symbol
func (b *Base) GetSymbol() string {
	return b.Symbol
}

// GetInterval returns the interval
func (b *Base) GetInterval() time.Duration {
	return b.Interval
}

// AppendReason adds reasoning for a decision being made
func (b *Base) AppendReason(y string) {
	b.Reasons = append(b.Reasons, y)
}

// AppendReasonf adds reasoning for a decision being made
// but with formatting
func (b *Base) AppendReasonf(y string, addons ...interface{}) {
	b.Reasons = append(b.Reasons, fmt.Sprintf(y, addons...))
}

// GetReason returns the concatenated reasons
func (b *Base) GetReason() string {
	return strings.Join(b.Reasons, ". ")
}

// GetReasons returns each individual reason
func (b *Base) GetReasons() []string {
	return b.Reasons
}
