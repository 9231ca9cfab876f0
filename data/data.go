package data

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tradebench/barsim/eventtypes/event"
	"github.com/tradebench/barsim/eventtypes/kline"
)

// NewMemory returns a source serving bars
func NewMemory(bars []*kline.Kline) *Memory {
	return &Memory{bars: bars}
}

// Load returns the held bars of symbol within [start, end]. A zero start or
// end leaves that side of the range open.
func (m *Memory) Load(ctx context.Context, symbol string, _ time.Duration, start, end time.Time) ([]*kline.Kline, error) {
	if err := ValidateRequest(symbol, start, end); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var resp []*kline.Kline
	for _, k := range m.bars {
		if k == nil || k.Base == nil || !strings.EqualFold(k.Symbol, symbol) {
			continue
		}
		if !InRange(k.Time, start, end) {
			continue
		}
		resp = append(resp, k)
	}
	if len(resp) == 0 {
		return nil, fmt.Errorf("%w for %v between %v and %v", ErrNoData, symbol, start, end)
	}
	return resp, nil
}

// Bars returns every held bar
func (m *Memory) Bars() []*kline.Kline {
	return m.bars
}

// ValidateRequest checks the common arguments of a load
func ValidateRequest(symbol string, start, end time.Time) error {
	if strings.TrimSpace(symbol) == "" {
		return fmt.Errorf("%w: symbol not set", ErrInvalidRequest)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return fmt.Errorf("%w: end %v before start %v", ErrInvalidRequest, end, start)
	}
	return nil
}

// InRange reports whether t lies within [start, end], treating zero bounds
// as open
func InRange(t, start, end time.Time) bool {
	if !start.IsZero() && t.Before(start) {
		return false
	}
	if !end.IsZero() && t.After(end) {
		return false
	}
	return true
}

// Sanitise returns copies of the valid bars of symbol within [start, end] in
// ascending time order with offsets numbered from 1. Invalid, duplicate,
// foreign and out of range bars are excluded and each is described by an
// Issue. The input is not modified.
func Sanitise(bars []*kline.Kline, symbol string, start, end time.Time) ([]*kline.Kline, []Issue) {
	type indexed struct {
		row int
		k   *kline.Kline
	}
	var issues []Issue
	candidates := make([]indexed, 0, len(bars))
	for i, k := range bars {
		row := i + 1
		if k == nil {
			issues = append(issues, Issue{Kind: InvalidBar, Row: row, Symbol: symbol, Message: "nil bar"})
			continue
		}
		if err := k.Validate(); err != nil {
			issue := Issue{Kind: InvalidBar, Row: row, Symbol: symbol, Message: err.Error()}
			if k.Base != nil {
				issue.Time = k.Time
			}
			issues = append(issues, issue)
			continue
		}
		if !strings.EqualFold(k.Symbol, symbol) {
			issues = append(issues, Issue{Kind: SymbolMismatch, Row: row, Time: k.Time, Symbol: k.Symbol, Message: fmt.Sprintf("expected %v", symbol)})
			continue
		}
		if !InRange(k.Time, start, end) {
			issues = append(issues, Issue{Kind: OutsideRange, Row: row, Time: k.Time, Symbol: k.Symbol, Message: fmt.Sprintf("outside %v to %v", start, end)})
			continue
		}
		candidates = append(candidates, indexed{row: row, k: k})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].k.Time.Before(candidates[j].k.Time)
	})

	resp := make([]*kline.Kline, 0, len(candidates))
	for i := range candidates {
		k := candidates[i].k
		if len(resp) > 0 && resp[len(resp)-1].Time.Equal(k.Time) {
			issues = append(issues, Issue{Kind: DuplicateBar, Row: candidates[i].row, Time: k.Time, Symbol: k.Symbol, Message: "bar already loaded for timestamp"})
			continue
		}
		resp = append(resp, copyKline(k, int64(len(resp)+1)))
	}
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Row < issues[j].Row
	})
	return resp, issues
}

func copyKline(k *kline.Kline, offset int64) *kline.Kline {
	cp := *k
	base := event.Base{
		Offset:   offset,
		Time:     k.Time,
		Symbol:   k.Symbol,
		Interval: k.Interval,
	}
	cp.Base = &base
	return &cp
}

// String describes the issue for logs
func (i Issue) String() string {
	if i.Time.IsZero() {
		return fmt.Sprintf("%v row %v %v: %v", i.Kind, i.Row, i.Symbol, i.Message)
	}
	return fmt.Sprintf("%v row %v %v at %v: %v", i.Kind, i.Row, i.Symbol, i.Time.Format(time.RFC3339), i.Message)
}
