package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/procurement-dashboard/internal/config"
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// ObjectStorage captures the S3-compatible operations the dataset sources need.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	GetObject(ctx context.Context, key string) ([]byte, error)
}

// New builds the client named by cfg.Client: "minio" (default) or "sevalla".
func New(cfg config.ObjectStorageConfig) (ObjectStorage, error) {
	switch strings.ToLower(cfg.Client) {
	case "", "minio":
		return NewMinioClient(cfg)
	case "sevalla":
		return NewSevallaClient(cfg)
	default:
		return nil, fmt.Errorf("unknown object storage client %q", cfg.Client)
	}
}

func validate(cfg config.ObjectStorageConfig) error {
	if cfg.Endpoint == "" {
		return fmt.Errorf("object storage endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return fmt.Errorf("object storage credentials must be provided")
	}
	if cfg.Bucket == "" {
		return fmt.Errorf("object storage bucket must be provided")
	}
	return nil
}

func regionOf(cfg config.ObjectStorageConfig) string {
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}
	return region
}

// splitEndpoint returns the bare host of cfg.Endpoint and whether TLS is on.
// An explicit scheme wins over UseSSL.
func splitEndpoint(cfg config.ObjectStorageConfig) (string, bool) {
	host, secure := strings.TrimSpace(cfg.Endpoint), cfg.UseSSL
	switch {
	case strings.HasPrefix(host, "https://"):
		host, secure = strings.TrimPrefix(host, "https://"), true
	case strings.HasPrefix(host, "http://"):
		host, secure = strings.TrimPrefix(host, "http://"), false
	}
	host = strings.TrimPrefix(host, "//")
	return strings.TrimSuffix(host, "/"), secure
}
