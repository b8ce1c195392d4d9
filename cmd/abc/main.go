package main

import (
	"os"

	"github.com/andresuchdata/inventory-abc/internal/watcher"
	"github.com/andresuchdata/inventory-abc/pkg/logger"
	"github.com/urfave/cli/v2"
)

func newSourceFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "source",
		Aliases:  []string{"s"},
		Usage:    "Inventory source: file.csv, file.xlsx, s3://key, drive://fileID, postgres://...?table=t or db:<table>",
		Required: true,
	}
}

func main() {
	app := &cli.App{
		Name:  "abc",
		Usage: "ABC inventory classification, reorder points and EOQ",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db-url",
				Usage:   "Database connection string used by db:<table> sources",
				EnvVars: []string{"DATABASE_URL"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:  "analyze",
				Usage: "Classify items and compute reorder points and EOQ",
				Flags: []cli.Flag{
					newSourceFlag(),
					&cli.StringFlag{
						Name:  "out",
						Usage: "Write the JSON report to this file instead of stdout",
					},
					&cli.StringFlag{
						Name:  "charts-dir",
						Usage: "Write bar_chart.png and cumulative_chart.png to this directory",
					},
					&cli.StringFlag{
						Name:  "upload-prefix",
						Usage: "Upload the report and charts to object storage under this prefix",
					},
					&cli.BoolFlag{
						Name:  "alert",
						Usage: "Send low stock alerts for critical items",
					},
				},
				Action: runAnalyze,
			},
			{
				Name:   "alert",
				Usage:  "Analyze a source and alert every critical item",
				Flags:  []cli.Flag{newSourceFlag()},
				Action: runAlert,
			},
			{
				Name:  "watch",
				Usage: "Analyze inventory files as they appear in a directory",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "dir",
						Usage:    "Directory to watch",
						Required: true,
						EnvVars:  []string{"WATCH_DIR"},
					},
					&cli.BoolFlag{
						Name:  "alert",
						Usage: "Send low stock alerts for critical items",
					},
					&cli.DurationFlag{
						Name:  "debounce",
						Usage: "Quiet period before a changed file is analyzed",
						Value: watcher.DefaultDebounce,
					},
				},
				Action: runWatch,
			},
			{
				Name:  "cache",
				Usage: "Manage the analysis cache",
				Subcommands: []*cli.Command{
					{
						Name:   "clear",
						Usage:  "Remove every cached analysis",
						Action: runCacheClear,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("abc failed")
	}
}
