package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/tradebench/barsim/common"
	"github.com/tradebench/barsim/eventhandlers/clock"
	"github.com/tradebench/barsim/eventhandlers/exchange"
	"github.com/tradebench/barsim/eventhandlers/exchange/commission"
	"github.com/tradebench/barsim/eventhandlers/portfolio/risk"
	"github.com/tradebench/barsim/eventhandlers/portfolio/size"
	"github.com/tradebench/barsim/eventhandlers/statistics"
	"github.com/tradebench/barsim/eventhandlers/strategies"
	"github.com/tradebench/barsim/log"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ReadConfigFromFile will take a config from a path. The format follows the
// file extension, json and yaml being supported.
func ReadConfigFromFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w %v: %w", errFileNotFound, path, err)
	}
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	log.Debugf(log.ConfigSys, "read config from %v", filepath.Clean(path))
	return decode(v)
}

// LoadConfig reads config data in the given format, json or yaml
func LoadConfig(data []byte, format string) (*Config, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	switch format {
	case "json", "yaml", "yml":
	default:
		return nil, fmt.Errorf("%w '%v'", errUnsupportedConfigType, format)
	}
	v := newViper()
	v.SetConfigType(format)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return decode(v)
}

// newViper returns a viper instance with defaults registered so that every
// known key can be overridden from the environment
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("nickname", "")
	v.SetDefault("strategy.name", "")
	v.SetDefault("data.symbol", "")
	v.SetDefault("data.source", CSVSource)
	v.SetDefault("data.interval", "1d")
	v.SetDefault("data.start-date", "")
	v.SetDefault("data.end-date", "")
	v.SetDefault("session.timezone", "UTC")
	v.SetDefault("session.open", "00:00")
	v.SetDefault("session.close", "00:00")
	v.SetDefault("session.trade-weekends", false)
	v.SetDefault("portfolio.initial-capital", "0")
	v.SetDefault("portfolio.allow-short", false)
	v.SetDefault("portfolio.allow-margin", false)
	v.SetDefault("portfolio.sizing.mode", string(size.PercentOfEquity))
	v.SetDefault("portfolio.sizing.equity-percent", "1")
	v.SetDefault("portfolio.sizing.fixed-quantity", "0")
	v.SetDefault("portfolio.sizing.precision", 0)
	v.SetDefault("portfolio.sizing.minimum-quantity", "0")
	v.SetDefault("portfolio.risk.maximum-position-size", "0")
	v.SetDefault("portfolio.risk.maximum-order-value", "0")
	v.SetDefault("portfolio.risk.maximum-exposure", "0")
	v.SetDefault("exchange.commission.model", commission.ZeroName)
	v.SetDefault("exchange.commission.rate", "0")
	v.SetDefault("exchange.commission.minimum", "0")
	v.SetDefault("exchange.slippage.base-rate", "0")
	v.SetDefault("exchange.slippage.volatility-factor", "0")
	v.SetDefault("exchange.slippage.size-factor", "0")
	v.SetDefault("exchange.slippage.maximum-rate", "0")
	v.SetDefault("exchange.liquidity.max-fill-percent", "0")
	v.SetDefault("exchange.liquidity.lot-size", "0")
	v.SetDefault("exchange.clamp-to-bar", false)
	v.SetDefault("exchange.average-volume-bars", 20)
	v.SetDefault("statistics.risk-free-rate", "0")
	v.SetDefault("statistics.return-period", string(statistics.PerDay))
	v.SetDefault("statistics.periods-per-year", strconv.Itoa(statistics.TradingDaysPerYear))
	v.SetDefault("optimiser.in-sample-ratio", "0.7")
	v.SetDefault("optimiser.rank-by", "sharpe")
	v.SetDefault("optimiser.top-n", 1)
	v.SetDefault("optimiser.overfit-threshold", "2")
	v.SetDefault("optimiser.workers", 0)
	v.SetDefault("report.output-path", "results")
	v.SetDefault("report.write-csv", true)
	v.SetDefault("report.print-summary", true)
}

func decode(v *viper.Viper) (*Config, error) {
	var c Config
	err := v.Unmarshal(&c,
		viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
			decimalHook,
			timeHook,
			mapstructure.TextUnmarshallerHookFunc(),
		)),
		func(dc *mapstructure.DecoderConfig) {
			dc.TagName = "json"
			dc.Squash = true
		},
	)
	if err != nil {
		return nil, err
	}
	if c.Logging.Enabled == nil {
		c.Logging = log.GenDefaultSettings()
	}
	return &c, nil
}

// decimalHook reads decimals from strings and numbers. Numbers are read from
// their shortest representation so 0.1 stays 0.1.
func decimalHook(_, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(decimal.Decimal{}) {
		return data, nil
	}
	switch d := data.(type) {
	case decimal.Decimal:
		return d, nil
	case string:
		if strings.TrimSpace(d) == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(strings.TrimSpace(d))
	case float64:
		return decimal.NewFromFloat(d), nil
	case float32:
		return decimal.NewFromFloat32(d), nil
	case int:
		return decimal.NewFromInt(int64(d)), nil
	case int64:
		return decimal.NewFromInt(d), nil
	case int32:
		return decimal.NewFromInt32(d), nil
	case uint64:
		return decimal.NewFromString(strconv.FormatUint(d, 10))
	case nil:
		return decimal.Zero, nil
	}
	return nil, fmt.Errorf("cannot read %T as a decimal", data)
}

// timeHook reads dates and date times, values without a zone are UTC
func timeHook(_, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Time{}) {
		return data, nil
	}
	switch d := data.(type) {
	case time.Time:
		return d, nil
	case string:
		return ParseDate(d)
	case nil:
		return time.Time{}, nil
	}
	return nil, fmt.Errorf("cannot read %T as a date", data)
}

// ParseDate reads a date or date time, an empty string being the zero time
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for i := range dateLayouts {
		if t, err := time.ParseInLocation(dateLayouts[i], s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised date '%v'", errBadDate, s)
}

// Validate checks all config settings and returns every problem found
func (c *Config) Validate() error {
	var errs error
	errs = common.AppendError(errs, c.validateStrategy())
	errs = common.AppendError(errs, c.validateData())
	errs = common.AppendError(errs, c.validateSession())
	errs = common.AppendError(errs, c.validatePortfolio())
	errs = common.AppendError(errs, c.validateExchange())
	errs = common.AppendError(errs, c.validateStatistics())
	errs = common.AppendError(errs, c.validateOptimiser())
	if errs != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errs)
	}
	return nil
}

func (c *Config) validateStrategy() error {
	if strings.TrimSpace(c.Strategy.Name) == "" {
		return errNoStrategy
	}
	s, err := strategies.LoadStrategyByName(c.Strategy.Name)
	if err != nil {
		return err
	}
	if len(c.Strategy.CustomSettings) > 0 {
		return s.SetCustomSettings(c.Strategy.CustomSettings)
	}
	return nil
}

func (c *Config) validateData() error {
	var errs error
	if strings.TrimSpace(c.Data.Symbol) == "" {
		errs = common.AppendError(errs, errSymbolUnset)
	}
	if c.Data.Interval <= 0 {
		errs = common.AppendError(errs, fmt.Errorf("%w: %v", errInvalidInterval, c.Data.Interval))
	}
	switch {
	case c.Data.StartDate.IsZero() || c.Data.EndDate.IsZero():
		errs = common.AppendError(errs, errStartEndUnset)
	case !c.Data.StartDate.Before(c.Data.EndDate):
		errs = common.AppendError(errs, fmt.Errorf("%w: start %v end %v", errBadDate, c.Data.StartDate, c.Data.EndDate))
	}
	switch strings.ToLower(c.Data.Source) {
	case CSVSource:
		if c.Data.CSV == nil || c.Data.CSV.Path == "" {
			errs = common.AppendError(errs, fmt.Errorf("%w for %v source", errDataPathUnset, CSVSource))
		}
	case DatabaseSource:
		if c.Data.Database == nil || c.Data.Database.Config.Database == "" {
			errs = common.AppendError(errs, fmt.Errorf("%w for %v source", errDataPathUnset, DatabaseSource))
		}
	default:
		errs = common.AppendError(errs, fmt.Errorf("%w '%v'", errUnknownDataSource, c.Data.Source))
	}
	return errs
}

func (c *Config) validateSession() error {
	cal, err := c.Session.Calendar()
	if err != nil {
		return err
	}
	if c.Data.Interval > 0 && c.Data.StartDate.Before(c.Data.EndDate) {
		start, end := c.DateRange()
		_, err = clock.New(start, end, c.Data.Interval.Duration(), cal)
	}
	return err
}

func (c *Config) validatePortfolio() error {
	var errs error
	if !c.Portfolio.InitialCapital.IsPositive() {
		errs = common.AppendError(errs, fmt.Errorf("%w: %v", errBadInitialFunds, c.Portfolio.InitialCapital))
	}
	if _, err := c.Sizer(); err != nil {
		errs = common.AppendError(errs, err)
	}
	if _, err := c.Portfolio.Risk.Checker(); err != nil {
		errs = common.AppendError(errs, err)
	}
	return errs
}

func (c *Config) validateExchange() error {
	if c.Exchange.AverageVolumeBars < 0 {
		return fmt.Errorf("%w: %v", errInvalidAverageVolume, c.Exchange.AverageVolumeBars)
	}
	s, err := c.Exchange.Settings()
	if err != nil {
		return err
	}
	_, err = exchange.New(s)
	return err
}

func (c *Config) validateStatistics() error {
	return c.Statistics.Settings(nil).Validate()
}

func (c *Config) validateOptimiser() error {
	o := &c.Optimiser
	var errs error
	if !o.InSampleRatio.IsPositive() || o.InSampleRatio.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		errs = common.AppendError(errs, fmt.Errorf("%w: %v", errInvalidRatio, o.InSampleRatio))
	}
	if o.OverfitThreshold.LessThanOrEqual(decimal.NewFromInt(1)) {
		errs = common.AppendError(errs, fmt.Errorf("%w: %v", errInvalidThreshold, o.OverfitThreshold))
	}
	if o.TopN < 1 {
		errs = common.AppendError(errs, fmt.Errorf("%w: %v", errInvalidTopN, o.TopN))
	}
	if o.Workers < 0 {
		errs = common.AppendError(errs, fmt.Errorf("%w: %v", errInvalidWorkers, o.Workers))
	}
	return errs
}

// Calendar builds the exchange calendar of the session
func (s *SessionSettings) Calendar() (*clock.Calendar, error) {
	loc := time.UTC
	if s.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(s.Timezone)
		if err != nil {
			return nil, err
		}
	}
	open, err := parseTimeOfDay(s.Open)
	if err != nil {
		return nil, err
	}
	closing, err := parseTimeOfDay(s.Close)
	if err != nil {
		return nil, err
	}
	var weekend []time.Weekday
	if !s.TradeWeekends {
		if len(s.Weekend) == 0 {
			weekend = []time.Weekday{time.Saturday, time.Sunday}
		}
		for i := range s.Weekend {
			wd, err := parseWeekday(s.Weekend[i])
			if err != nil {
				return nil, err
			}
			weekend = append(weekend, wd)
		}
	}
	holidays := make([]time.Time, 0, len(s.Holidays))
	for i := range s.Holidays {
		h, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s.Holidays[i]), loc)
		if err != nil {
			return nil, fmt.Errorf("%w '%v'", errInvalidHoliday, s.Holidays[i])
		}
		holidays = append(holidays, h)
	}
	return clock.NewCalendar(loc, open, closing, weekend, holidays)
}

// Location returns the session timezone, UTC when unset or unknown
func (s *SessionSettings) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DateRange returns the configured start and end. Dates read without a zone
// are wall clock times in the session timezone.
func (c *Config) DateRange() (start, end time.Time) {
	loc := c.Session.Location()
	return inLocation(c.Data.StartDate, loc), inLocation(c.Data.EndDate, loc)
}

func inLocation(t time.Time, loc *time.Location) time.Time {
	if t.IsZero() || t.Location() != time.UTC {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

func parseTimeOfDay(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w '%v'", errInvalidSessionTime, s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func parseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w '%v'", errInvalidWeekday, s)
}

// Settings builds the exchange execution settings
func (e *ExchangeSettings) Settings() (exchange.Settings, error) {
	comm, err := commission.New(e.Commission.Model, e.Commission.Rate, e.Commission.Minimum)
	if err != nil {
		return exchange.Settings{}, err
	}
	return exchange.Settings{
		Slippage:   e.Slippage,
		Commission: comm,
		Liquidity:  e.Liquidity,
		ClampToBar: e.ClampToBar,
	}, nil
}

// Sizer builds the order sizer, pricing buys with the configured commission
func (c *Config) Sizer() (*size.Size, error) {
	comm, err := commission.New(c.Exchange.Commission.Model, c.Exchange.Commission.Rate, c.Exchange.Commission.Minimum)
	if err != nil {
		return nil, err
	}
	s := &size.Size{
		Mode:            size.Mode(strings.ToLower(c.Portfolio.Sizing.Mode)),
		FixedQuantity:   c.Portfolio.Sizing.FixedQuantity,
		EquityPercent:   c.Portfolio.Sizing.EquityPercent,
		Precision:       c.Portfolio.Sizing.Precision,
		MinimumQuantity: c.Portfolio.Sizing.MinimumQuantity,
		Commission:      comm,
	}
	if err = s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Checker builds the default risk check
func (r *RiskSettings) Checker() (*risk.Risk, error) {
	return risk.New(r.MaximumPositionSize, r.MaximumOrderValue, r.MaximumExposure)
}

// Settings returns the statistics settings, days split in loc
func (s *StatisticsSettings) Settings(loc *time.Location) statistics.Settings {
	return statistics.Settings{
		RiskFreeRate:   s.RiskFreeRate,
		ReturnPeriod:   statistics.ReturnPeriod(strings.ToLower(s.ReturnPeriod)),
		PeriodsPerYear: s.PeriodsPerYear,
		Location:       loc,
	}
}

// Copy returns a deep copy of the config so a run may adjust its strategy
// settings without affecting others
func (c *Config) Copy() *Config {
	cp := *c
	if c.Strategy.CustomSettings != nil {
		cp.Strategy.CustomSettings = make(map[string]any, len(c.Strategy.CustomSettings))
		for k, v := range c.Strategy.CustomSettings {
			cp.Strategy.CustomSettings[k] = v
		}
	}
	if c.Data.CSV != nil {
		csvCopy := *c.Data.CSV
		cp.Data.CSV = &csvCopy
	}
	if c.Data.Database != nil {
		dbCopy := *c.Data.Database
		cp.Data.Database = &dbCopy
	}
	cp.Session.Weekend = append([]string(nil), c.Session.Weekend...)
	cp.Session.Holidays = append([]string(nil), c.Session.Holidays...)
	return &cp
}

// ParseInterval reads an interval such as 30s, 5m, 1h, 1d or 1w
func ParseInterval(s string) (Interval, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, fmt.Errorf("%w: empty", errInvalidInterval)
	}
	var unit time.Duration
	switch {
	case strings.HasSuffix(s, "d"):
		unit = day
	case strings.HasSuffix(s, "w"):
		unit = 7 * day
	}
	if unit > 0 {
		n, err := strconv.ParseInt(s[:len(s)-1], 10, 64)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("%w '%v'", errInvalidInterval, s)
		}
		return Interval(time.Duration(n) * unit), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w '%v'", errInvalidInterval, s)
	}
	return Interval(d), nil
}

// Duration returns the interval as a time.Duration
func (i Interval) Duration() time.Duration {
	return time.Duration(i)
}

// String returns the short form of the interval
func (i Interval) String() string {
	d := time.Duration(i)
	switch {
	case d <= 0:
		return d.String()
	case d%(7*day) == 0:
		return strconv.FormatInt(int64(d/(7*day)), 10) + "w"
	case d%day == 0:
		return strconv.FormatInt(int64(d/day), 10) + "d"
	case d%time.Hour == 0:
		return strconv.FormatInt(int64(d/time.Hour), 10) + "h"
	case d%time.Minute == 0:
		return strconv.FormatInt(int64(d/time.Minute), 10) + "m"
	}
	return d.String()
}

// UnmarshalText reads the interval from its short form
func (i *Interval) UnmarshalText(text []byte) error {
	v, err := ParseInterval(string(text))
	if err != nil {
		return err
	}
	*i = v
	return nil
}

// MarshalText writes the interval in its short form
func (i Interval) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}
