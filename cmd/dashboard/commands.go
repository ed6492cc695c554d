package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/andresuchdata/procurement-dashboard/internal/cache"
	"github.com/andresuchdata/procurement-dashboard/internal/config"
	"github.com/andresuchdata/procurement-dashboard/internal/dataset"
	"github.com/andresuchdata/procurement-dashboard/internal/domain"
	"github.com/andresuchdata/procurement-dashboard/internal/format"
	"github.com/andresuchdata/procurement-dashboard/internal/loader"
	"github.com/andresuchdata/procurement-dashboard/internal/reactive"
	"github.com/andresuchdata/procurement-dashboard/internal/repository/postgres"
	"github.com/andresuchdata/procurement-dashboard/internal/service"
	"github.com/andresuchdata/procurement-dashboard/internal/source"
	"github.com/andresuchdata/procurement-dashboard/pkg/logger"
	"github.com/urfave/cli/v2"
)

type serviceKey struct{}

func loadConfig(c *cli.Context) *config.Config {
	logger.Setup(c.String("log-level"), "console")

	cfg := *config.Load()
	if c.IsSet("source") {
		cfg.Dataset.Source = c.String("source")
	}
	if c.IsSet("path") {
		cfg.Dataset.Path = c.String("path")
	}
	if c.IsSet("year") {
		cfg.Reporting.Year = c.Int("year")
	}
	return &cfg
}

// initService loads the dataset and stores the dashboard service in the
// command context.
func initService(c *cli.Context) error {
	cfg := loadConfig(c)

	reader, err := source.New(c.Context, cfg)
	if err != nil {
		return err
	}
	ds := dataset.New(reader, dataset.Options{Year: cfg.Reporting.Year})
	if err := ds.Load(c.Context); err != nil {
		return err
	}

	svc := service.NewDashboardService(ds, cache.NewMemory(), service.Options{
		TopN:          cfg.Reporting.TopN,
		UpdateWorkers: cfg.Reporting.UpdateWorkers,
	})
	c.Context = context.WithValue(c.Context, serviceKey{}, svc)
	return nil
}

func dashboardService(c *cli.Context) (*service.DashboardService, error) {
	svc, ok := c.Context.Value(serviceKey{}).(*service.DashboardService)
	if !ok || svc == nil {
		return nil, fmt.Errorf("dashboard service not initialized")
	}
	return svc, nil
}

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func criteriaFrom(c *cli.Context) domain.FilterCriteria {
	return domain.FilterCriteria{
		CompanyCode:   c.String("company-code"),
		PurchasingOrg: c.String("purchasing-org"),
		Plant:         c.String("plant"),
		MaterialGroup: c.String("material-group"),
	}
}

func stateFrom(c *cli.Context) (domain.UIState, error) {
	tab, ok := domain.ParseTab(c.String("tab"))
	if !ok {
		return domain.UIState{}, fmt.Errorf("unknown tab %q", c.String("tab"))
	}
	view, ok := domain.ParseView(c.String("view"))
	if !ok {
		return domain.UIState{}, fmt.Errorf("unknown view %q", c.String("view"))
	}
	return domain.UIState{Tab: tab, View: view, Filters: criteriaFrom(c)}, nil
}

func runInfo(c *cli.Context) error {
	svc, err := dashboardService(c)
	if err != nil {
		return err
	}
	info, err := svc.DatasetInfo()
	if err != nil {
		return err
	}
	return printJSON(c, info)
}

func runOptions(c *cli.Context) error {
	svc, err := dashboardService(c)
	if err != nil {
		return err
	}
	options, err := svc.Options(c.Context, criteriaFrom(c))
	if err != nil {
		return err
	}
	return printJSON(c, options)
}

func runChart(c *cli.Context) error {
	svc, err := dashboardService(c)
	if err != nil {
		return err
	}
	state, err := stateFrom(c)
	if err != nil {
		return err
	}
	chart, err := svc.Chart(c.Context, c.String("id"), state)
	if err != nil {
		return err
	}
	return printJSON(c, chart)
}

func runUpdate(c *cli.Context) error {
	svc, err := dashboardService(c)
	if err != nil {
		return err
	}
	state, err := stateFrom(c)
	if err != nil {
		return err
	}

	event := reactive.InitialEvent(state)
	if changed := c.StringSlice("changed"); len(changed) > 0 {
		event = reactive.Event{State: state}
		for _, raw := range changed {
			in, err := reactive.ParseInput(raw)
			if err != nil {
				return err
			}
			event.Changed = append(event.Changed, in)
		}
	}

	if c.Bool("plan-only") {
		return printJSON(c, svc.Graph().Plan(event))
	}
	update, err := svc.Update(c.Context, event)
	if err != nil {
		return err
	}
	return printJSON(c, update)
}

func runFormat(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("format needs at least one number", 1)
	}
	for _, arg := range c.Args().Slice() {
		n, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", arg)
		}
		fmt.Fprintln(c.App.Writer, format.Number(n))
	}
	return nil
}

// runImport always reads the local sheet, whatever the configured source.
func runImport(c *cli.Context) error {
	cfg := loadConfig(c)
	table := cfg.Database.OrdersTable
	if c.IsSet("table") {
		table = c.String("table")
	}

	orders, err := loader.Load(c.Context, &source.FileSource{Path: cfg.Dataset.Path, Sheet: cfg.Dataset.Sheet})
	if err != nil {
		return err
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	writer := postgres.NewOrderWriter(db, table)
	if err := writer.EnsureSchema(c.Context); err != nil {
		return err
	}
	if err := writer.ReplaceOrders(c.Context, orders); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "imported %d orders into %s\n", orders.Len(), table)
	return nil
}
