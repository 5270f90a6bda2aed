package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

// Storage keeps binary objects, such as member photos, under caller chosen keys.
type Storage interface {
	// Put writes content under key, replacing any existing object.
	Put(ctx context.Context, key string, content io.Reader, contentType string) error

	// Get opens the object; the caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, FileMetadata, error)

	Delete(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) (bool, error)
}

type FileMetadata struct {
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type"`
	LastModified time.Time `json:"last_modified"`
	ETag         string    `json:"etag"`
}

type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)
