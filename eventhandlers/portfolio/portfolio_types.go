package portfolio

import (
	"errors"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradebench/barsim/eventhandlers/exchange/commission"
	"github.com/tradebench/barsim/eventhandlers/portfolio/holdings"
	"github.com/tradebench/barsim/eventtypes/fill"
	"github.com/tradebench/barsim/eventtypes/kline"
	"github.com/tradebench/barsim/eventtypes/order"
)

var (
	// ErrInsufficientFunds is returned when a buy cannot be paid for from the
	// cash not already reserved by open orders
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrShortSellingDisabled is returned when a sell would take a position
	// below zero while shorting is not permitted
	ErrShortSellingDisabled = errors.New("short selling is disabled")
	// ErrAccounting is returned when portfolio state breaks an accounting rule.
	// It is always fatal to a run.
	ErrAccounting = errors.New("portfolio accounting error")

	errInvalidInitialCapital = errors.New("initial capital must be greater than zero")
	errInvalidReferencePrice = errors.New("reference price must be greater than zero")
)

// DefaultIDNamespace is used for trade identifiers when no namespace is set
var DefaultIDNamespace = uuid.NewV5(uuid.NamespaceOID, "barsim.trade")

// Handler contains all functions expected to operate a portfolio manager
type Handler interface {
	PrepareOrder(*order.Order, decimal.Decimal, commission.Model, Reservation) error
	OnFill(*fill.Fill) (*holdings.Trade, error)
	Update(*kline.Kline) (EquitySample, error)
	Snapshot() Snapshot
	Reconcile() error
}

// Portfolio tracks cash, positions, closed trades and the equity curve of a
// single run. It is not safe for concurrent use; each run owns one.
type Portfolio struct {
	initialCapital  decimal.Decimal
	cash            decimal.Decimal
	allowShort      bool
	allowMargin     bool
	idNamespace     uuid.UUID
	positions       map[string]*holdings.Position
	trades          []holdings.Trade
	equityCurve     []EquitySample
	realisedGross   decimal.Decimal
	totalCommission decimal.Decimal
	fills           int64
	tradeSequence   int64
	lastUpdate      time.Time
}

// EquitySample is the account value after a processed bar
type EquitySample struct {
	Offset        int64           `json:"offset"`
	Time          time.Time       `json:"time"`
	Cash          decimal.Decimal `json:"cash"`
	MarketValue   decimal.Decimal `json:"market-value"`
	UnrealisedPNL decimal.Decimal `json:"unrealised-pnl"`
	Equity        decimal.Decimal `json:"equity"`
	// Quantity is the signed position held in the bar's symbol
	Quantity decimal.Decimal `json:"quantity"`
}

// Snapshot is a read only copy of the account handed to sizing and risk
// checks
type Snapshot struct {
	Time           time.Time
	InitialCapital decimal.Decimal
	Cash           decimal.Decimal
	MarketValue    decimal.Decimal
	Equity         decimal.Decimal
	// ReservedCash is cash committed to open buy orders. It is filled in by
	// the engine, which owns the order book.
	ReservedCash decimal.Decimal
	Positions    []holdings.Position
	AllowShort   bool
	AllowMargin  bool
}

// Reservation is the exposure already committed by open orders
type Reservation struct {
	Cash decimal.Decimal
	// Quantity is the signed quantity of open orders in the order's symbol
	Quantity decimal.Decimal
}
