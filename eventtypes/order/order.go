package order

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tradebench/barsim/common"
)

// IsOrder returns whether the event is an order event
func (o *Order) IsOrder() bool {
	return true
}

// SetDirection sets the side of the order
func (o *Order) SetDirection(s common.Side) {
	o.Direction = s
}

// GetDirection returns the side of the order
func (o *Order) GetDirection() common.Side {
	return o.Direction
}

// SetAmount sets the requested quantity
func (o *Order) SetAmount(i decimal.Decimal) {
	o.Amount = i
}

// GetAmount returns the requested quantity
func (o *Order) GetAmount() decimal.Decimal {
	return o.Amount
}

// GetRemaining returns the quantity still to be filled
func (o *Order) GetRemaining() decimal.Decimal {
	return o.Amount.Sub(o.FilledAmount)
}

// GetPrice returns the limit or stop price
func (o *Order) GetPrice() decimal.Decimal {
	return o.Price
}

// GetType returns the order type
func (o *Order) GetType() Type {
	return o.Type
}

// GetStatus returns order status
func (o *Order) GetStatus() Status {
	return o.Status
}

// SetID sets the order id
func (o *Order) SetID(id string) {
	o.ID = id
}

// GetID returns the ID
func (o *Order) GetID() string {
	return o.ID
}

// GetAllocatedFunds returns the amount of funds the portfolio manager
// has allocated to this potential position
func (o *Order) GetAllocatedFunds() decimal.Decimal {
	return o.AllocatedFunds
}

// IsTerminal reports whether the order can no longer change
func (s Status) IsTerminal() bool {
	return s == Filled || s == Cancelled || s == Rejected
}

// IsOpen reports whether the order is waiting on the market
func (s Status) IsOpen() bool {
	return s == Pending || s == PartiallyFilled
}

// SetStatus moves the order through its lifecycle
func (o *Order) SetStatus(s Status) error {
	for _, next := range transitions[o.Status] {
		if next == s {
			o.Status = s
			return nil
		}
	}
	return fmt.Errorf("%w %v -> %v for order %v", ErrInvalidTransition, o.Status, s, o.ID)
}

// ApplyFill records a filled quantity against the order and moves it to
// PARTIAL or FILLED
func (o *Order) ApplyFill(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: %v", ErrInvalidOrder, errNonPositiveAmount)
	}
	if amount.IsZero() {
		return nil
	}
	filled := o.FilledAmount.Add(amount)
	if filled.GreaterThan(o.Amount) {
		return fmt.Errorf("%w %v: %v", ErrInvalidOrder, o.Snapshot(), errOverfilled)
	}
	next := PartiallyFilled
	if filled.Equal(o.Amount) {
		next = Filled
	}
	if err := o.SetStatus(next); err != nil {
		return err
	}
	o.FilledAmount = filled
	if o.Type == Stop {
		o.Triggered = true
	}
	return nil
}

// Validate ensures the order can be evaluated by the fill simulator
func (o *Order) Validate() error {
	if o == nil || o.Base == nil {
		return fmt.Errorf("%w: %v", ErrInvalidOrder, common.ErrNilEvent)
	}
	if !o.Direction.IsBuyOrSell() {
		return fmt.Errorf("%w %v: %v", ErrInvalidOrder, o.Snapshot(), common.ErrInvalidSide)
	}
	if !o.Amount.IsPositive() {
		return fmt.Errorf("%w %v: %v", ErrInvalidOrder, o.Snapshot(), errNonPositiveAmount)
	}
	if o.FilledAmount.IsNegative() || o.FilledAmount.GreaterThan(o.Amount) {
		return fmt.Errorf("%w %v: %v", ErrInvalidOrder, o.Snapshot(), errOverfilled)
	}
	if o.Status.IsTerminal() {
		return fmt.Errorf("%w %v: %v", ErrInvalidOrder, o.Snapshot(), errTerminalOrder)
	}
	switch o.Type {
	case Market:
	case Limit, Stop, StopLimit:
		if !o.Price.IsPositive() {
			return fmt.Errorf("%w %v: %v", ErrInvalidOrder, o.Snapshot(), errMissingPrice)
		}
	default:
		return fmt.Errorf("%w %v: %v", ErrInvalidOrder, o.Snapshot(), errUnknownType)
	}
	return nil
}

// Snapshot renders the order for error and log context
func (o *Order) Snapshot() string {
	if o == nil || o.Base == nil {
		return "<nil order>"
	}
	return fmt.Sprintf("[%v %v %v %v qty=%v filled=%v price=%v status=%v created=%v]",
		o.ID, o.Symbol, o.Type, o.Direction,
		o.Amount, o.FilledAmount, o.Price, o.Status, o.Time.Format("2006-01-02 15:04:05"))
}
