// Package source reads the raw order sheet from wherever it is kept.
package source

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/andresuchdata/procurement-dashboard/internal/config"
	"github.com/andresuchdata/procurement-dashboard/internal/drive"
	"github.com/andresuchdata/procurement-dashboard/internal/loader"
	"github.com/andresuchdata/procurement-dashboard/internal/repository/postgres"
	"github.com/andresuchdata/procurement-dashboard/internal/storage"
)

// FileSource reads a local xlsx or csv file.
type FileSource struct {
	Path  string
	Sheet string
}

func (s *FileSource) Name() string { return "file:" + s.Path }

func (s *FileSource) ReadSheet(ctx context.Context) (*loader.Sheet, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	return loader.DecodeSheet(s.Path, data, s.Sheet)
}

// Downloader fetches a Drive file's content.
type Downloader interface {
	Download(ctx context.Context, fileID string) ([]byte, error)
}

// DriveSource downloads the sheet from Google Drive. FileName only picks the
// decoder; the file is addressed by ID.
type DriveSource struct {
	Client   Downloader
	FileID   string
	FileName string
	Sheet    string
}

func (s *DriveSource) Name() string { return "drive:" + s.FileID }

func (s *DriveSource) ReadSheet(ctx context.Context) (*loader.Sheet, error) {
	data, err := s.Client.Download(ctx, s.FileID)
	if err != nil {
		return nil, err
	}
	return loader.DecodeSheet(s.FileName, data, s.Sheet)
}

// ObjectSource gets the sheet from an S3-compatible bucket.
type ObjectSource struct {
	Store storage.ObjectStorage
	Key   string
	Sheet string
}

func (s *ObjectSource) Name() string { return "s3:" + s.Key }

func (s *ObjectSource) ReadSheet(ctx context.Context) (*loader.Sheet, error) {
	data, err := s.Store.GetObject(ctx, s.Key)
	if err != nil {
		return nil, err
	}
	return loader.DecodeSheet(s.Key, data, s.Sheet)
}

// New builds the reader selected by DATASET_SOURCE.
func New(ctx context.Context, cfg *config.Config) (loader.SheetReader, error) {
	switch cfg.Dataset.Source {
	case "", "file":
		return &FileSource{Path: cfg.Dataset.Path, Sheet: cfg.Dataset.Sheet}, nil

	case "drive":
		if cfg.Drive.CredentialsJSON == "" {
			return nil, fmt.Errorf("drive source needs DRIVE_CREDENTIALS_JSON")
		}
		svc, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
		if err != nil {
			return nil, err
		}
		fileID := cfg.Drive.FileID
		name := path.Base(cfg.Dataset.Path)
		if fileID == "" {
			if cfg.Drive.FolderID == "" {
				return nil, fmt.Errorf("drive source needs DRIVE_FILE_ID or DRIVE_FOLDER_ID")
			}
			if fileID, err = svc.FindFile(ctx, cfg.Drive.FolderID, name); err != nil {
				return nil, err
			}
		}
		return &DriveSource{Client: svc, FileID: fileID, FileName: name, Sheet: cfg.Dataset.Sheet}, nil

	case "s3":
		store, err := storage.New(cfg.ObjectStorage)
		if err != nil {
			return nil, err
		}
		key := cfg.ObjectStorage.ObjectKey
		if key == "" {
			key = path.Base(cfg.Dataset.Path)
		}
		return &ObjectSource{Store: store, Key: key, Sheet: cfg.Dataset.Sheet}, nil

	case "postgres":
		db, err := postgres.NewDB(cfg.Database)
		if err != nil {
			return nil, err
		}
		return postgres.NewOrderReader(db, cfg.Database.OrdersTable), nil

	default:
		return nil, fmt.Errorf("unknown dataset source %q", cfg.Dataset.Source)
	}
}
