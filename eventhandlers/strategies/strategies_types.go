package strategies

import (
	"github.com/tradebench/barsim/eventtypes/kline"
	"github.com/tradebench/barsim/eventtypes/signal"
)

// Handler defines all functions required to run a strategy. OnBar receives
// the bar history up to and including the current bar and returns a signal,
// or nil or a DoNothing signal when no action should be taken.
type Handler interface {
	Name() string
	Description() string
	OnBar([]*kline.Kline) (*signal.Signal, error)
	SetCustomSettings(map[string]any) error
	SetDefaults()
}
