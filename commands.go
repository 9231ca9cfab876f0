package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tradebench/barsim/common"
	"github.com/tradebench/barsim/config"
	"github.com/tradebench/barsim/data"
	"github.com/tradebench/barsim/data/csv"
	datadb "github.com/tradebench/barsim/data/database"
	"github.com/tradebench/barsim/database"
	"github.com/tradebench/barsim/database/repository/candle"
	"github.com/tradebench/barsim/engine"
	"github.com/tradebench/barsim/log"
	"github.com/tradebench/barsim/optimiser"
	"github.com/tradebench/barsim/report"
	"github.com/urfave/cli/v2"
)

var errNoDatabaseConfig = errors.New("config has no database settings")

var runCommand = &cli.Command{
	Name:   "run",
	Usage:  "runs a single backtest and writes its result",
	Action: runBacktest,
}

var optimiseCommand = &cli.Command{
	Name:    "optimise",
	Aliases: []string{"optimize"},
	Usage:   "runs a grid search over the config's optimiser grid",
	Action:  runOptimiser,
}

var importCommand = &cli.Command{
	Name:  "import",
	Usage: "imports a csv file of bars into the configured database",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "file",
			Usage:    "the csv file to import",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "symbol",
			Usage: "the symbol of the bars, defaults to the config's symbol",
		},
		&cli.StringFlag{
			Name:  "interval",
			Usage: "the bar interval such as 5m or 1d, defaults to the config's interval",
		},
	},
	Action: importBars,
}

var validateCommand = &cli.Command{
	Name:   "validate",
	Usage:  "checks a config without running it",
	Action: validateConfig,
}

var showCommand = &cli.Command{
	Name:  "show",
	Usage: "prints the summary of a saved result file",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "file",
			Usage:    "the result file to read",
			Required: true,
		},
	},
	Action: showResult,
}

// loadConfig reads the config and sets up logging from it
func loadConfig() (*config.Config, error) {
	cfg, err := config.ReadConfigFromFile(configPath)
	if err != nil {
		return nil, err
	}
	if err = log.SetupGlobalLogger(&cfg.Logging); err != nil {
		return nil, err
	}
	if outputPath != "" {
		cfg.Report.OutputPath = outputPath
	}
	return cfg, nil
}

// newSource returns the configured data source and a function releasing it
func newSource(ctx context.Context, cfg *config.Config) (data.Source, func(), error) {
	switch strings.ToLower(cfg.Data.Source) {
	case config.CSVSource:
		if cfg.Data.CSV == nil {
			return nil, nil, fmt.Errorf("%w: no csv settings", config.ErrInvalidConfig)
		}
		return csv.New(cfg.Data.CSV.Path, cfg.Session.Location()), func() {}, nil
	case config.DatabaseSource:
		db, err := connect(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		src, err := datadb.New(db)
		if err != nil {
			closeDatabase(db)
			return nil, nil, err
		}
		return src, func() { closeDatabase(db) }, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown data source '%v'", config.ErrInvalidConfig, cfg.Data.Source)
}

func connect(ctx context.Context, cfg *config.Config) (*database.Instance, error) {
	if cfg.Data.Database == nil {
		return nil, errNoDatabaseConfig
	}
	return database.Connect(ctx, &cfg.Data.Database.Config, cfg.Data.Database.DataPath)
}

func closeDatabase(db *database.Instance) {
	if err := db.CloseConnection(); err != nil {
		log.Errorln(log.Database, err)
	}
}

func runBacktest(c *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	src, release, err := newSource(c.Context, cfg)
	if err != nil {
		return err
	}
	defer release()

	bt, err := engine.New(cfg, src, nil)
	if err != nil {
		return err
	}
	res, err := bt.Run(c.Context)
	if res == nil {
		return err
	}
	if _, errSave := report.Save(res, &cfg.Report); errSave != nil {
		err = common.AppendError(err, errSave)
	}
	if cfg.Report.PrintSummary {
		report.PrintSummary(res)
	}
	return err
}

func runOptimiser(c *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	src, release, err := newSource(c.Context, cfg)
	if err != nil {
		return err
	}
	defer release()

	o, err := optimiser.New(cfg, src)
	if err != nil {
		return err
	}
	res, err := o.Run(c.Context)
	if err != nil {
		return err
	}
	if _, err = report.SaveOptimisation(res, &cfg.Report); err != nil {
		return err
	}
	if cfg.Report.PrintSummary {
		report.PrintOptimisation(res)
	}
	return nil
}

func importBars(c *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	symbol := cfg.Data.Symbol
	if s := c.String("symbol"); s != "" {
		symbol = s
	}
	interval := cfg.Data.Interval
	if s := c.String("interval"); s != "" {
		if interval, err = config.ParseInterval(s); err != nil {
			return err
		}
	}
	db, err := connect(c.Context, cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	file := c.String("file")
	n, err := candle.InsertFromCSV(c.Context, db, symbol, interval.Duration(), file, cfg.Session.Location())
	if err != nil {
		return err
	}
	log.Infof(log.Database, "Imported %v %v bars of %v from %v", n, interval, symbol, file)
	return nil
}

func validateConfig(_ *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err = cfg.Validate(); err != nil {
		return err
	}
	if len(cfg.Optimiser.Grid) > 0 {
		if _, err = optimiser.New(cfg, data.NewMemory(nil)); err != nil {
			return err
		}
	}
	log.Infof(log.ConfigSys, "%v is valid", configPath)
	return nil
}

func showResult(c *cli.Context) error {
	res, err := report.ReadResult(c.String("file"))
	if err != nil {
		return err
	}
	report.PrintSummary(res)
	return nil
}
