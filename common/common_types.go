package common

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of a signal, order or fill
type Side string

const (
	// Buy increases the position
	Buy Side = "BUY"
	// Sell decreases the position
	Sell Side = "SELL"
	// DoNothing is an explicit signal for the backtester to not perform an action
	// based upon indicator results
	DoNothing Side = "DO NOTHING"
	// CouldNotBuy is flagged when a BUY signal is raised in the strategy phase, but the
	// portfolio manager or risk check cannot place an order
	CouldNotBuy Side = "COULD NOT BUY"
	// CouldNotSell is flagged when a SELL signal is raised in the strategy phase, but the
	// portfolio manager or risk check cannot place an order
	CouldNotSell Side = "COULD NOT SELL"
	// MissingData is signalled when the clock reaches a time with no bar
	MissingData Side = "MISSING DATA"
)

var (
	// ErrNilArguments is a common error response to highlight that nils were passed in
	// when they should not have been
	ErrNilArguments = errors.New("received nil argument(s)")
	// ErrNilEvent is a common error for whenever a nil event occurs when it shouldn't have
	ErrNilEvent = errors.New("nil event received")
	// ErrInvalidSide occurs when a side is neither buy nor sell
	ErrInvalidSide = errors.New("invalid side")

	errCannotGenerateFileName = errors.New("cannot generate filename")
)

// Event is the base of every event travelling through the engine
type Event interface {
	GetOffset() int64
	SetOffset(int64)
	GetTime() time.Time
	GetSymbol() string
	GetInterval() time.Duration
	GetReason() string
	GetReasons() []string
	AppendReason(string)
}

// DataEvent is an event carrying bar prices
type DataEvent interface {
	Event
	GetClosePrice() decimal.Decimal
	GetHighPrice() decimal.Decimal
	GetLowPrice() decimal.Decimal
	GetOpenPrice() decimal.Decimal
	GetVolume() decimal.Decimal
}

// Directioner dictates the side of an order
type Directioner interface {
	SetDirection(side Side)
	GetDirection() Side
}

// multiError holds every error appended through AppendError
type multiError struct {
	errs []error
}

// ASCIILogo is printed to the command line window on start
const ASCIILogo = `
  _
 | |__   __ _ _ __ ___(_)_ __ ___
 | '_ \ / _' | '__/ __| | '_ ' _ \
 | |_) | (_| | |  \__ \ | | | | | |
 |_.__/ \__,_|_|  |___/_|_| |_| |_|
`
