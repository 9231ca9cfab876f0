package csv

import (
	"errors"
	"sync"
	"time"

	"github.com/tradebench/barsim/data"
)

// Column positions of the headerless layout, matching the candle import
// format: timestamp, volume, open, high, low, close
const (
	colTimestamp = iota
	colVolume
	colOpen
	colHigh
	colLow
	colClose
	headerlessColumns
)

var (
	errNoPath         = errors.New("csv path not set")
	errMissingColumns = errors.New("header is missing required columns")
	errShortRow       = errors.New("row has too few columns")
	errInvalidTime    = errors.New("unrecognised timestamp")

	timeLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	}

	headerAliases = map[string]int{
		"time":      colTimestamp,
		"timestamp": colTimestamp,
		"date":      colTimestamp,
		"datetime":  colTimestamp,
		"volume":    colVolume,
		"vol":       colVolume,
		"open":      colOpen,
		"high":      colHigh,
		"low":       colLow,
		"close":     colClose,
	}
)

// Source loads bars from a CSV file. Path is either a file or a directory
// holding one <symbol>.csv file per symbol. Timestamps without a zone are read
// in Location, which defaults to UTC.
type Source struct {
	Path     string
	Location *time.Location

	m      sync.Mutex
	issues []data.Issue
}

// columns maps each field to its index within a row
type columns [headerlessColumns]int
