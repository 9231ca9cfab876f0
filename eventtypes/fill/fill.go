package fill

import (
	"github.com/shopspring/decimal"
	"github.com/tradebench/barsim/common"
	"github.com/tradebench/barsim/eventtypes/order"
)

// SetDirection sets the direction
func (f *Fill) SetDirection(s common.Side) {
	f.Direction = s
}

// GetDirection returns the direction
func (f *Fill) GetDirection() common.Side {
	return f.Direction
}

// GetAmount returns the filled quantity
func (f *Fill) GetAmount() decimal.Decimal {
	return f.Amount
}

// GetClosePrice returns the reference price before slippage
func (f *Fill) GetClosePrice() decimal.Decimal {
	return f.ClosePrice
}

// GetPurchasePrice returns the price the quantity filled at
func (f *Fill) GetPurchasePrice() decimal.Decimal {
	return f.PurchasePrice
}

// GetSlippageRate returns the slippage rate
func (f *Fill) GetSlippageRate() decimal.Decimal {
	return f.Slippage
}

// GetCommission returns the commission charged
func (f *Fill) GetCommission() decimal.Decimal {
	return f.Commission
}

// GetTotal returns the cash impact magnitude
func (f *Fill) GetTotal() decimal.Decimal {
	return f.Total
}

// GetNotional returns quantity multiplied by fill price
func (f *Fill) GetNotional() decimal.Decimal {
	return f.Amount.Mul(f.PurchasePrice)
}

// GetOrderStatus returns the order state after this attempt
func (f *Fill) GetOrderStatus() order.Status {
	return f.OrderStatus
}

// SignedAmount returns the quantity, negative for sells
func (f *Fill) SignedAmount() decimal.Decimal {
	if f.Direction == common.Sell {
		return f.Amount.Neg()
	}
	return f.Amount
}

// IsEmpty reports whether nothing filled
func (f *Fill) IsEmpty() bool {
	return f.Amount.IsZero()
}
