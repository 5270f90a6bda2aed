package storage

import (
	"context"
	"fmt"

	"ministry/internal/config"
)

// New builds the backend selected by STORAGE_TYPE.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch StorageType(cfg.Type) {
	case StorageTypeLocal:
		basePath := cfg.LocalPath
		if basePath == "" {
			basePath = "./data/uploads"
		}
		return NewLocalStorage(basePath)
	case StorageTypeS3:
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3 bucket is required for S3 storage")
		}
		return NewS3Storage(ctx, S3Config{Bucket: cfg.S3Bucket, Region: cfg.S3Region, Prefix: cfg.S3Prefix})
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
