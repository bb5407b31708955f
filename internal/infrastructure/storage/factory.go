package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	infraconfig "github.com/tileshop/backend/internal/infrastructure/config"
	"github.com/tileshop/backend/internal/infrastructure/printing"
)

// NewPDFStorage builds the archive backend named by storage.type
func NewPDFStorage(ctx context.Context, cfg infraconfig.StorageConfig, logger *zap.Logger) (printing.PDFStorage, error) {
	switch cfg.Type {
	case "", "fs":
		return printing.NewFileSystemStorage(&printing.FileSystemStorageConfig{BasePath: cfg.Path, Logger: logger})
	case "s3":
		s, err := NewS3Storage(&cfg.S3, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Type)
	}
}
