package config

import (
	"reflect"
	"testing"

	"github.com/spf13/viper"
)

func TestNewDefaults(t *testing.T) {
	cfg := New(viper.New())

	if cfg.Server.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Dataset.Source != "file" || cfg.Dataset.Path != "./data/Daten I.xlsx" {
		t.Errorf("unexpected dataset defaults %+v", cfg.Dataset)
	}
	if cfg.Reporting.Year != 0 || cfg.Reporting.TopN != 10 || cfg.Reporting.UpdateWorkers != 4 {
		t.Errorf("unexpected reporting defaults %+v", cfg.Reporting)
	}
	if !cfg.Cache.Enabled || cfg.Cache.Backend != "memory" || cfg.Cache.TTLSeconds != 180 {
		t.Errorf("unexpected cache defaults %+v", cfg.Cache)
	}
	if !reflect.DeepEqual(cfg.Server.AllowedOrigins, []string{"*"}) {
		t.Errorf("unexpected allowed origins %v", cfg.Server.AllowedOrigins)
	}
}

func TestNewOverrides(t *testing.T) {
	v := viper.New()
	v.Set("DATASET_SOURCE", "S3")
	v.Set("REPORTING_YEAR", 2020)
	v.Set("CACHE_BACKEND", "Redis")
	v.Set("REDIS_URL", "redis://cache:6379/1")
	v.Set("DB_DRIVER", "pgx")

	cfg := New(v)
	if cfg.Dataset.Source != "s3" {
		t.Errorf("expected lowercased source, got %s", cfg.Dataset.Source)
	}
	if cfg.Reporting.Year != 2020 {
		t.Errorf("expected reporting year 2020, got %d", cfg.Reporting.Year)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisURL != "redis://cache:6379/1" {
		t.Errorf("unexpected cache config %+v", cfg.Cache)
	}
	if cfg.Database.Driver != "pgx" {
		t.Errorf("expected pgx driver, got %s", cfg.Database.Driver)
	}
}
