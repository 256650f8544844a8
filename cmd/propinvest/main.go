// Command propinvest считает рейтинг районов и параметры сделки по CSV без сервера.
//
//	propinvest rank --top 10 --weight gross_yield=0.4
//	propinvest deal --price 800000 --weekly-rent 650 --jurisdiction VIC --occupancy INV
//	propinvest duty --price 800000 --jurisdiction VIC --occupancy INV
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"propinvest/pkg/logx"
)

//nolint:gochecknoglobals
var version = "dev"

const (
	defaultFeaturesPath       = "data/area_features.csv"
	defaultFeaturesSamplePath = "data/area_features_sample.csv"
	defaultBracketsPath       = "data/duty_brackets.csv"
	defaultBracketsSamplePath = "data/duty_brackets_sample.csv"

	formatTable = "table"
	formatJSON  = "json"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "propinvest",
		Usage:   "Area investment ranking and deal evaluation",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   formatTable,
				Usage:   "Output format (table, json)",
			},
		},
		Before: func(c *cli.Context) error {
			slog.SetDefault(logx.NewLogger(os.Stderr, logx.FormatText, c.String("log-level")))

			switch c.String("format") {
			case formatTable, formatJSON:
				return nil
			default:
				return fmt.Errorf("unknown format %q", c.String("format"))
			}
		},
		Commands: []*cli.Command{
			rankCommand(),
			dealCommand(),
			dutyCommand(),
		},
	}
}
