package main

import (
	"os"

	"github.com/andresuchdata/procurement-dashboard/pkg/logger"
	"github.com/urfave/cli/v2"
)

func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "company-code", Usage: "Filter by company code"},
		&cli.StringFlag{Name: "purchasing-org", Usage: "Filter by purchasing organisation"},
		&cli.StringFlag{Name: "plant", Usage: "Filter by plant"},
		&cli.StringFlag{Name: "material-group", Usage: "Filter by material group"},
	}
}

func stateFlags() []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{Name: "tab", Usage: "Tab label or code (os, sp, os_ibcs)", Value: "os"},
		&cli.StringFlag{Name: "view", Usage: "\"Spend Amount\" or \"Number of Orders\"", Value: "Spend Amount"},
	}, filterFlags()...)
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "dashboard",
		Usage: "Inspect the procurement dashboard from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "source",
				Usage:   "Dataset source: file, drive, s3 or postgres",
				EnvVars: []string{"DATASET_SOURCE"},
			},
			&cli.StringFlag{
				Name:    "path",
				Usage:   "Path of the order sheet",
				EnvVars: []string{"DATASET_PATH"},
			},
			&cli.IntFlag{
				Name:    "year",
				Usage:   "Current reporting year (0 derives it from the data)",
				EnvVars: []string{"REPORTING_YEAR"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
				Usage: "Log level",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "info",
				Usage:  "Print the dataset summary",
				Before: initService,
				Action: runInfo,
			},
			{
				Name:   "options",
				Usage:  "Print the cascading filter options",
				Flags:  filterFlags(),
				Before: initService,
				Action: runOptions,
			},
			{
				Name:  "chart",
				Usage: "Render a chart as JSON",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Chart id, e.g. os-by-month", Required: true},
				}, stateFlags()...),
				Before: initService,
				Action: runChart,
			},
			{
				Name:  "update",
				Usage: "Route a UI event through the update graph and print the result",
				Flags: append([]cli.Flag{
					&cli.StringSliceFlag{Name: "changed", Usage: "Changed inputs; all inputs when omitted"},
					&cli.BoolFlag{Name: "plan-only", Usage: "Only print the update plan"},
				}, stateFlags()...),
				Before: initService,
				Action: runUpdate,
			},
			{
				Name:      "format",
				Usage:     "Format numbers with magnitude suffixes",
				ArgsUsage: "<number>...",
				Action:    runFormat,
			},
			{
				Name:  "import",
				Usage: "Load the order sheet and write it to the postgres orders table",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "table", Usage: "Target table", EnvVars: []string{"DB_ORDERS_TABLE"}},
				},
				Action: runImport,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("dashboard command failed")
	}
}
