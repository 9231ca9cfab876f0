package risk

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tradebench/barsim/common"
	"github.com/tradebench/barsim/eventhandlers/portfolio"
	"github.com/tradebench/barsim/eventtypes/order"
)

// New validates the limits and returns a risk checker
func New(maxPosition, maxOrderValue, maxExposure decimal.Decimal) (*Risk, error) {
	if maxPosition.IsNegative() || maxOrderValue.IsNegative() || maxExposure.IsNegative() {
		return nil, errNegativeLimit
	}
	return &Risk{
		MaximumPositionSize: maxPosition,
		MaximumOrderValue:   maxOrderValue,
		MaximumExposure:     maxExposure,
	}, nil
}

// EvaluateOrder goes through a standard assessment of an order before it is
// queued. The order's ClosePrice is used as the reference price, falling back
// to its limit or stop price.
func (r *Risk) EvaluateOrder(s portfolio.Snapshot, o *order.Order) error {
	if o == nil || o.Base == nil {
		return common.ErrNilArguments
	}
	price := o.ClosePrice
	if !price.IsPositive() {
		price = o.Price
	}
	if !price.IsPositive() {
		return fmt.Errorf("%w: %w", ErrOrderRejected, errNoReferencePrice)
	}

	signed := o.Amount
	if o.Direction == common.Sell {
		signed = signed.Neg()
	}
	resulting := s.Position(o.Symbol).Quantity.Add(signed).Abs()

	if r.MaximumPositionSize.IsPositive() && resulting.GreaterThan(r.MaximumPositionSize) {
		return fmt.Errorf("%w: %w, %v > %v", ErrOrderRejected, errExceedsPositionSize, resulting, r.MaximumPositionSize)
	}
	value := o.Amount.Mul(price)
	if r.MaximumOrderValue.IsPositive() && value.GreaterThan(r.MaximumOrderValue) {
		return fmt.Errorf("%w: %w, %v > %v", ErrOrderRejected, errExceedsOrderValue, value, r.MaximumOrderValue)
	}
	if r.MaximumExposure.IsPositive() {
		if !s.Equity.IsPositive() {
			return fmt.Errorf("%w: %w, equity %v", ErrOrderRejected, errExceedsExposure, s.Equity)
		}
		exposure := resulting.Mul(price).Div(s.Equity)
		if exposure.GreaterThan(r.MaximumExposure) {
			return fmt.Errorf("%w: %w, %v > %v", ErrOrderRejected, errExceedsExposure, exposure.Round(4), r.MaximumExposure)
		}
	}
	return nil
}
