package signal

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/tradebench/barsim/common"
	"github.com/tradebench/barsim/eventtypes/event"
	"github.com/tradebench/barsim/eventtypes/order"
)

var errStrengthOutOfRange = errors.New("signal strength must be between 0 and 1")

// Signal is a strategy's intent for the next bar
type Signal struct {
	*event.Base
	Direction common.Side `json:"side"`
	// Strength scales the sized quantity, 1 being full size
	Strength decimal.Decimal `json:"strength"`
	// Price is the suggested limit or stop price
	Price decimal.Decimal `json:"price"`
	// Amount overrides the sizer when set
	Amount     decimal.Decimal `json:"amount"`
	OrderType  order.Type      `json:"order-type"`
	ClosePrice decimal.Decimal `json:"close-price"`
}

// Event handler is used for getting trade signal details
type Event interface {
	common.Event
	common.Directioner

	GetAmount() decimal.Decimal
	SetAmount(decimal.Decimal)
	GetPrice() decimal.Decimal
	GetClosePrice() decimal.Decimal
	GetStrength() decimal.Decimal
	GetOrderType() order.Type
	IsSignal() bool
}
