// Command lifeexp runs the life-expectancy prediction workflow: train a
// model over country-year health records and score held-out data, or apply
// previously saved artifacts to new records.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/YuminosukeSato/lifeexp/pkg/errors"
	"github.com/YuminosukeSato/lifeexp/pkg/log"
)

var (
	version = "v0.1.0-default"
	commit  = ""
)

var debugFlag = &cli.BoolFlag{
	Name:  "debug",
	Usage: "Prints verbose logs (optional, default: false)",
}

var logLevelFlag = &cli.StringFlag{
	Name:  "log-level",
	Usage: "Minimum log level: debug, info, warn or error (optional, default: info)",
	Value: "info",
}

var logBackendFlag = &cli.StringFlag{
	Name:  "log-backend",
	Usage: "Log backend: zerolog or slog (optional, default: zerolog)",
	Value: "zerolog",
}

func main() {
	app := &cli.Command{
		Name:    "lifeexp",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		Usage:   "CLI for training and applying the life-expectancy prediction pipeline",
		Flags: []cli.Flag{
			debugFlag,
			logLevelFlag,
			logBackendFlag,
		},
		Commands: []*cli.Command{
			runCmd,
			predictCmd,
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level, err := log.ParseLevel(cmd.String(logLevelFlag.Name))
			if err != nil {
				return ctx, err
			}
			if cmd.Bool(debugFlag.Name) {
				level = log.LevelDebug
			}
			switch backend := cmd.String(logBackendFlag.Name); backend {
			case "zerolog":
				log.SetProvider(log.NewZerologProvider(level))
			case "slog":
				log.SetProvider(log.NewSlogProvider(level))
			default:
				return ctx, errors.Newf("unknown log backend %q", backend)
			}
			return ctx, nil
		},
	}

	start := time.Now()
	if err := app.Run(context.Background(), os.Args); err != nil {
		log.GetLogger().Error("fatal error", err,
			log.DurationMsKey, time.Since(start).Milliseconds())
		os.Exit(1)
	}
}
