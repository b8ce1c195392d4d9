package storage

import "context"

// ObjectStorage captures the S3-compatible operations the CLI needs: reading
// inventory files and publishing finished reports.
type ObjectStorage interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
	UploadObject(ctx context.Context, key string, data []byte, contentType string) error
}
