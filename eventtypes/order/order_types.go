package order

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/tradebench/barsim/common"
	"github.com/tradebench/barsim/eventtypes/event"
)

// Type is the execution style of an order
type Type string

// Order types
const (
	Market    Type = "MARKET"
	Limit     Type = "LIMIT"
	Stop      Type = "STOP"
	StopLimit Type = "STOP_LIMIT"
)

// Status is the lifecycle state of an order
type Status string

// Order lifecycle states
const (
	Created         Status = "CREATED"
	Pending         Status = "PENDING"
	PartiallyFilled Status = "PARTIAL"
	Filled          Status = "FILLED"
	Cancelled       Status = "CANCELLED"
	Rejected        Status = "REJECTED"
)

var (
	// ErrInvalidOrder is returned when an order is internally inconsistent
	ErrInvalidOrder = errors.New("invalid order")
	// ErrInvalidTransition is returned when a status change breaks the lifecycle
	ErrInvalidTransition = errors.New("invalid order status transition")

	errNonPositiveAmount = errors.New("quantity must be greater than zero")
	errMissingPrice      = errors.New("limit and stop orders require a price greater than zero")
	errOverfilled        = errors.New("filled quantity exceeds requested quantity")
	errUnknownType       = errors.New("unknown order type")
	errTerminalOrder     = errors.New("order is in a terminal state")
)

// transitions lists the legal next states of each status
var transitions = map[Status][]Status{
	Created:         {Pending, Rejected, Cancelled},
	Pending:         {PartiallyFilled, Filled, Cancelled, Rejected},
	PartiallyFilled: {PartiallyFilled, Filled, Cancelled},
}

// Order contains all details for an order event
type Order struct {
	*event.Base
	ID             string          `json:"id"`
	Direction      common.Side     `json:"side"`
	Type           Type            `json:"type"`
	Status         Status          `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
	FilledAmount   decimal.Decimal `json:"filled-amount"`
	Price          decimal.Decimal `json:"price"`
	ClosePrice     decimal.Decimal `json:"close-price"`
	AllocatedFunds decimal.Decimal `json:"allocated-funds"`
	// Triggered is set once a stop order has filled, its remainder then
	// executes as a market order
	Triggered bool `json:"triggered,omitempty"`
}

// Event inherits common event interfaces along with extra functions related to handling orders
type Event interface {
	common.Event
	common.Directioner
	GetAmount() decimal.Decimal
	GetRemaining() decimal.Decimal
	GetPrice() decimal.Decimal
	GetType() Type
	GetStatus() Status
	GetID() string
	GetAllocatedFunds() decimal.Decimal
	IsOrder() bool
}
