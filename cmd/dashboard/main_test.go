package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andresuchdata/procurement-dashboard/internal/domain"
)

const ordersCSV = `Purchasing Doc.,Document Date,Supplier name,Company Code,Purchasing Org.,Plant,Material Group,Net Value,supplier delivery date,delivery date,deviation cause,deviation cause text
4500000001,2019-03-10,Acme,1000,P100,PL01,MG1,100,2019-03-20,2019-03-20,0,no deviation
4500000002,2020-01-15,Acme,1000,P100,PL01,MG1,1500,2020-02-01,2020-02-08,1,delivery deviation - too late
`

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	if err := app.Run(append([]string{"dashboard"}, args...)); err != nil {
		t.Fatalf("dashboard %v failed: %v", args, err)
	}
	return out.String()
}

func writeSheet(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.csv")
	if err := os.WriteFile(path, []byte(ordersCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFormatCommand(t *testing.T) {
	out := run(t, "format", "999", "1500000")
	if out != "999\n1.5M\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestChartCommand(t *testing.T) {
	path := writeSheet(t)
	out := run(t, "--source", "file", "--path", path, "chart", "--id", "os-total-by-year")

	var chart domain.ChartData
	if err := json.Unmarshal([]byte(out), &chart); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if chart.ID != "os-total-by-year" || len(chart.Indicators) != 2 || chart.Indicators[0].Text != "1.5k" {
		t.Errorf("unexpected chart %+v", chart)
	}
}

func TestUpdatePlanOnly(t *testing.T) {
	path := writeSheet(t)
	out := run(t, "--path", path, "update", "--tab", "sp", "--changed", "view", "--plan-only")
	if !strings.Contains(out, `"chart:sp-by-month"`) || strings.Contains(out, `"header"`) {
		t.Errorf("unexpected plan %s", out)
	}
}

func TestInfoCommand(t *testing.T) {
	path := writeSheet(t)
	out := run(t, "--path", path, "--year", "2019", "info")
	if !strings.Contains(out, `"rows": 2`) || !strings.Contains(out, `"current": 2019`) {
		t.Errorf("unexpected info %s", out)
	}
}
