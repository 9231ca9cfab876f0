package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tradebench/barsim/log"
	"github.com/tradebench/barsim/signaler"
	"github.com/urfave/cli/v2"
)

const version = "0.1.0"

var (
	configPath string
	outputPath string
)

func main() {
	app := cli.NewApp()
	app.Name = "barsim"
	app.Version = version
	app.EnableBashCompletion = true
	app.Usage = "replays historical bars through a trading strategy"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Value:       "config.json",
			Usage:       "the config file to load, json or yaml",
			Destination: &configPath,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "overrides the config's report output path",
			Destination: &outputPath,
		},
	}
	app.Commands = []*cli.Command{
		runCommand,
		optimiseCommand,
		importCommand,
		validateCommand,
		showCommand,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// Capture cancel for interrupt
		<-signaler.WaitForInterrupt()
		log.Warn(log.Global, "interrupted, stopping")
		cancel()
	}()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
