package exchange

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/tradebench/barsim/eventhandlers/exchange/commission"
	"github.com/tradebench/barsim/eventhandlers/exchange/liquidity"
	"github.com/tradebench/barsim/eventhandlers/exchange/slippage"
	"github.com/tradebench/barsim/eventtypes/fill"
	"github.com/tradebench/barsim/eventtypes/kline"
	"github.com/tradebench/barsim/eventtypes/order"
)

var (
	// ErrStopLimitUnsupported is returned for stop-limit orders, whose
	// same-bar trigger and limit interaction is not simulated
	ErrStopLimitUnsupported = errors.New("stop-limit orders are not supported")
	// ErrExecution wraps every failure to evaluate an order against a bar
	ErrExecution = errors.New("execution error")

	errNilMarket      = errors.New("market context requires a bar")
	errSymbolMismatch = errors.New("order symbol does not match bar symbol")
	errOrderNotOpen   = errors.New("order must be pending to be evaluated")
	errNilCommission  = errors.New("commission model is nil")
)

// ExecutionHandler converts an open order and the bar it is evaluated against
// into a fill
type ExecutionHandler interface {
	ExecuteOrder(*order.Order, *MarketContext) (*fill.Fill, error)
}

// Settings holds the execution cost models
type Settings struct {
	Slippage   slippage.Model
	Commission commission.Model
	Liquidity  liquidity.Model
	// ClampToBar keeps slipped prices within the bar's high and low
	ClampToBar bool
}

// MarketContext is the market state an order is evaluated against
type MarketContext struct {
	Bar *kline.Kline
	// AverageVolume is the trailing mean bar volume used by the size
	// component of slippage
	AverageVolume decimal.Decimal
}

// Exchange simulates order execution. It holds no per order state so the
// same instance may evaluate any number of orders.
type Exchange struct {
	settings Settings
}
