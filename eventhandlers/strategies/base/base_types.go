package base

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrStrategyNotFound used when the configured strategy name does not exist
	ErrStrategyNotFound = errors.New("not found. Please ensure the strategy 'name' field is spelled properly in your config")
	// ErrInvalidCustomSettings used when bad custom settings are found in the config
	ErrInvalidCustomSettings = errors.New("invalid custom settings in config")
	// ErrTooMuchBadData used when there is too much missing data
	ErrTooMuchBadData = errors.New("backtesting cannot continue as there is too much invalid data. Please review your dataset")
)

// Strategy holds settings shared by every strategy
type Strategy struct {
	// amount, when set, requests a fixed quantity on every entry instead of
	// deferring to the sizer
	amount decimal.Decimal
}
