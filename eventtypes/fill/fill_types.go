package fill

import (
	"github.com/shopspring/decimal"
	"github.com/tradebench/barsim/common"
	"github.com/tradebench/barsim/eventtypes/event"
	"github.com/tradebench/barsim/eventtypes/order"
)

// Fill is the result of a single attempt to execute an order against a bar
type Fill struct {
	*event.Base
	OrderID   string      `json:"order-id"`
	Direction common.Side `json:"side"`
	// Amount is the quantity filled by this attempt
	Amount decimal.Decimal `json:"amount"`
	// ClosePrice is the reference price before slippage
	ClosePrice decimal.Decimal `json:"close-price"`
	// PurchasePrice is the price the quantity was filled at
	PurchasePrice decimal.Decimal `json:"purchase-price"`
	// Slippage is the rate applied to the reference price
	Slippage   decimal.Decimal `json:"slippage"`
	Commission decimal.Decimal `json:"commission"`
	// Total is the cash impact magnitude: notional plus commission for buys,
	// notional less commission for sells
	Total decimal.Decimal `json:"total"`
	// Remaining is the order quantity left unfilled after this attempt
	Remaining   decimal.Decimal `json:"remaining"`
	OrderStatus order.Status    `json:"order-status"`
}

// Event holds all functions required to handle a fill event
type Event interface {
	common.Event
	common.Directioner

	GetAmount() decimal.Decimal
	GetClosePrice() decimal.Decimal
	GetPurchasePrice() decimal.Decimal
	GetSlippageRate() decimal.Decimal
	GetCommission() decimal.Decimal
	GetTotal() decimal.Decimal
	GetNotional() decimal.Decimal
	GetOrderStatus() order.Status
}
