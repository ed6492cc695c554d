package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/andresuchdata/procurement-dashboard/internal/config"
	"github.com/chartmuseum/storage"
)

// SevallaClient implements ObjectStorage on chartmuseum's Amazon backend,
// for Sevalla and other path-style S3 services.
type SevallaClient struct {
	backend storage.Backend
	bucket  string
}

// NewSevallaClient exports the credentials to the AWS environment, which is
// the only way the chartmuseum backend accepts them.
func NewSevallaClient(cfg config.ObjectStorageConfig) (*SevallaClient, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	host, secure := splitEndpoint(cfg)
	scheme := "http"
	if secure {
		scheme = "https"
	}
	region := regionOf(cfg)

	env := map[string]string{
		"AWS_ACCESS_KEY_ID":     cfg.AccessKey,
		"AWS_SECRET_ACCESS_KEY": cfg.SecretKey,
		"AWS_REGION":            region,
		"AWS_DEFAULT_REGION":    region,
	}
	for k, v := range env {
		if err := os.Setenv(k, v); err != nil {
			return nil, fmt.Errorf("sevalla: set %s: %w", k, err)
		}
	}

	pathStyle := true
	backend := storage.NewAmazonS3BackendWithOptions(cfg.Bucket, "", region, scheme+"://"+host, "",
		&storage.AmazonS3Options{S3ForcePathStyle: &pathStyle})

	return &SevallaClient{backend: backend, bucket: cfg.Bucket}, nil
}

func (c *SevallaClient) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	objects, err := c.backend.ListObjects(prefix)
	if err != nil {
		return nil, fmt.Errorf("sevalla: list %s/%s: %w", c.bucket, prefix, err)
	}
	infos := make([]ObjectInfo, len(objects))
	for i, o := range objects {
		infos[i] = ObjectInfo{Key: o.Path, Size: int64(len(o.Content))}
	}
	return infos, nil
}

// GetObject ignores ctx; the chartmuseum backend has no context support.
func (c *SevallaClient) GetObject(ctx context.Context, key string) ([]byte, error) {
	object, err := c.backend.GetObject(key)
	if err != nil {
		return nil, fmt.Errorf("sevalla: get %s/%s: %w", c.bucket, key, err)
	}
	return object.Content, nil
}

var _ ObjectStorage = (*SevallaClient)(nil)
