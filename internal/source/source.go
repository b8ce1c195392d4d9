// Package source loads inventory tables from files, buckets, Google Drive
// and PostgreSQL.
package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/inventory-abc/internal/domain"
	"github.com/andresuchdata/inventory-abc/internal/drive"
	"github.com/andresuchdata/inventory-abc/internal/storage"
)

// Loader reads a full inventory table.
type Loader interface {
	Load(ctx context.Context) ([]domain.InventoryItem, error)
}

// DriveFiles is the part of the Drive service the loader needs.
type DriveFiles interface {
	File(ctx context.Context, fileID string) (*drive.File, error)
	Download(ctx context.Context, fileID string, w io.Writer) error
}

// Dependencies are the remote clients a URI may need. Nil clients are only
// an error when a URI actually asks for them.
type Dependencies struct {
	Storage storage.ObjectStorage
	Drive   DriveFiles
}

// Open returns the loader for uri:
//
//	items.csv, items.xlsx                local file
//	s3://path/items.csv                  object in the configured bucket
//	drive://<file id>                    Google Drive file
//	postgres://...?table=inventory_items PostgreSQL table
func Open(uri string, deps Dependencies) (Loader, error) {
	switch {
	case strings.HasPrefix(uri, "postgres://"), strings.HasPrefix(uri, "postgresql://"):
		return NewPostgresLoader(uri)
	case strings.HasPrefix(uri, "s3://"):
		if deps.Storage == nil {
			return nil, fmt.Errorf("source %s: object storage is not configured", uri)
		}
		return &ObjectLoader{storage: deps.Storage, key: strings.TrimPrefix(uri, "s3://")}, nil
	case strings.HasPrefix(uri, "drive://"):
		if deps.Drive == nil {
			return nil, fmt.Errorf("source %s: google drive is not configured", uri)
		}
		return &DriveLoader{drive: deps.Drive, fileID: strings.TrimPrefix(uri, "drive://")}, nil
	}

	if u, err := url.Parse(uri); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return nil, fmt.Errorf("source %s: unsupported scheme %q", uri, u.Scheme)
	}
	if _, err := formatOf(uri); err != nil {
		return nil, err
	}
	return &FileLoader{path: uri}, nil
}

// FileLoader reads a local CSV or XLSX file.
type FileLoader struct {
	path string
}

func (l *FileLoader) Load(ctx context.Context) ([]domain.InventoryItem, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", l.path, err)
	}
	defer f.Close()

	return Parse(l.path, f)
}

// ObjectLoader reads a CSV or XLSX object from S3-compatible storage.
type ObjectLoader struct {
	storage storage.ObjectStorage
	key     string
}

func (l *ObjectLoader) Load(ctx context.Context) ([]domain.InventoryItem, error) {
	if _, err := formatOf(l.key); err != nil {
		return nil, err
	}
	data, err := l.storage.GetObject(ctx, l.key)
	if err != nil {
		return nil, err
	}
	return Parse(l.key, bytes.NewReader(data))
}

// DriveLoader reads a CSV or XLSX file from Google Drive.
type DriveLoader struct {
	drive  DriveFiles
	fileID string
}

func (l *DriveLoader) Load(ctx context.Context) ([]domain.InventoryItem, error) {
	meta, err := l.drive.File(ctx, l.fileID)
	if err != nil {
		return nil, err
	}
	if _, err := formatOf(meta.Name); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := l.drive.Download(ctx, l.fileID, &buf); err != nil {
		return nil, err
	}
	return Parse(meta.Name, &buf)
}

type format int

const (
	formatCSV format = iota
	formatXLSX
)

func formatOf(name string) (format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return formatCSV, nil
	case ".xlsx":
		return formatXLSX, nil
	default:
		return 0, fmt.Errorf("unsupported inventory file %q: expected .csv or .xlsx", name)
	}
}

// IsInventoryFile reports whether name has a supported extension.
func IsInventoryFile(name string) bool {
	_, err := formatOf(name)
	return err == nil
}

// Parse reads an inventory table, choosing the format from name's extension.
func Parse(name string, r io.Reader) ([]domain.InventoryItem, error) {
	f, err := formatOf(name)
	if err != nil {
		return nil, err
	}

	var items []domain.InventoryItem
	switch f {
	case formatXLSX:
		items, err = parseXLSX(r)
	default:
		items, err = parseCSV(r)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return items, nil
}
