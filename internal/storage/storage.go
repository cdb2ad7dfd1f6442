package storage

import (
	"context"
	"time"
)

// ObjectInfo describes one stored report artifact.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStorage is the slice of an S3-compatible store the export flow
// uses: pushing finished workbooks and listing what was pushed before.
type ObjectStorage interface {
	UploadObject(ctx context.Context, key string, data []byte) error
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
}
