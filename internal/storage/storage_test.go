package storage

import (
	"testing"

	"github.com/andresuchdata/procurement-dashboard/internal/config"
)

func TestNewValidatesConfig(t *testing.T) {
	valid := config.ObjectStorageConfig{
		Endpoint:  "https://s3.example.com",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "procurement",
	}

	tests := []struct {
		name    string
		mutate  func(c *config.ObjectStorageConfig)
		wantErr bool
	}{
		{name: "minio", mutate: func(c *config.ObjectStorageConfig) {}},
		{name: "sevalla", mutate: func(c *config.ObjectStorageConfig) { c.Client = "sevalla" }},
		{name: "missing endpoint", mutate: func(c *config.ObjectStorageConfig) { c.Endpoint = "" }, wantErr: true},
		{name: "missing secret", mutate: func(c *config.ObjectStorageConfig) { c.SecretKey = "" }, wantErr: true},
		{name: "missing bucket", mutate: func(c *config.ObjectStorageConfig) { c.Bucket = "" }, wantErr: true},
		{name: "unknown client", mutate: func(c *config.ObjectStorageConfig) { c.Client = "ftp" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			client, err := New(cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil || client == nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRegionOf(t *testing.T) {
	if got := regionOf(config.ObjectStorageConfig{}); got != "us-east-1" {
		t.Errorf("expected default region, got %s", got)
	}
	if got := regionOf(config.ObjectStorageConfig{Region: " eu-central-1 "}); got != "eu-central-1" {
		t.Errorf("expected trimmed region, got %s", got)
	}
}

func TestSplitEndpoint(t *testing.T) {
	testCases := []struct {
		name       string
		endpoint   string
		useSSL     bool
		wantHost   string
		wantSecure bool
	}{
		{name: "bare host uses flag", endpoint: "s3.example.com", useSSL: true, wantHost: "s3.example.com", wantSecure: true},
		{name: "https scheme", endpoint: "https://s3.example.com/", wantHost: "s3.example.com", wantSecure: true},
		{name: "http scheme overrides flag", endpoint: "http://localhost:9000", useSSL: true, wantHost: "localhost:9000", wantSecure: false},
		{name: "protocol relative", endpoint: "//minio:9000", wantHost: "minio:9000"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			host, secure := splitEndpoint(config.ObjectStorageConfig{Endpoint: tc.endpoint, UseSSL: tc.useSSL})
			if host != tc.wantHost || secure != tc.wantSecure {
				t.Errorf("Expected %s/%v, got %s/%v", tc.wantHost, tc.wantSecure, host, secure)
			}
		})
	}
}
