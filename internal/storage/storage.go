// Package storage wraps S3-compatible object storage. Inventory CSV exports are written here.
package storage

import (
	"context"
	"io"
	"time"
)

// Object describes an upload. Size is the exact byte count, or -1 when unknown.
type Object struct {
	Key         string
	ContentType string
	Size        int64
	Metadata    map[string]string
}

// Stored is what the bucket reports after an upload.
type Stored struct {
	Key        string
	ETag       string
	Size       int64
	UploadedAt time.Time
}

// Storage is the export bucket.
type Storage interface {
	Upload(ctx context.Context, obj Object, r io.Reader) (Stored, error)
	// PresignDownload returns a credential-free URL that downloads key as filename until expiry.
	PresignDownload(ctx context.Context, key, filename string, expiry time.Duration) (string, error)
	Remove(ctx context.Context, key string) error
	// Ping checks that the bucket is reachable.
	Ping(ctx context.Context) error
}
