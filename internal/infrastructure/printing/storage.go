package printing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tileshop/backend/internal/domain/invoicing"
)

// ErrArchiveNotFound is returned when no archived PDF exists under a key
var ErrArchiveNotFound = errors.New("archived PDF not found")

// PDFStorage archives rendered invoices
type PDFStorage interface {
	// Store writes data under key, replacing any previous copy
	Store(ctx context.Context, key string, data []byte) (*StoreResult, error)
	// Get opens an archived PDF
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes an archived PDF. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}

// StoreResult describes an archived PDF
type StoreResult struct {
	Key  string
	Size int64
}

// ArchiveKey is where an invoice PDF is archived: {yyyy}/{mm}/{safe-number}.pdf
func ArchiveKey(number string, date time.Time) string {
	return fmt.Sprintf("%04d/%02d/%s.pdf", date.Year(), int(date.Month()), invoicing.SafeFileName(number))
}

// FileSystemStorageConfig contains configuration for file system storage
type FileSystemStorageConfig struct {
	// BasePath is the root directory for archived PDFs
	BasePath string
	Logger   *zap.Logger
}

// FileSystemStorage stores PDFs on the local file system
type FileSystemStorage struct {
	basePath string
	logger   *zap.Logger
}

// NewFileSystemStorage creates the base directory if needed
func NewFileSystemStorage(config *FileSystemStorageConfig) (*FileSystemStorage, error) {
	if config == nil {
		config = &FileSystemStorageConfig{}
	}
	base := config.BasePath
	if base == "" {
		base = "data/invoices"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed,
			fmt.Sprintf("failed to create storage directory: %s", base), err)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSystemStorage{basePath: base, logger: logger.Named("pdf_storage")}, nil
}

// Store writes the file atomically through a temp file in the same directory
func (s *FileSystemStorage) Store(ctx context.Context, key string, data []byte) (*StoreResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	if len(data) == 0 {
		return nil, NewRenderError(ErrCodeStorageFailed, "PDF data is empty", nil)
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to create directory", err)
	}
	tmp, err := os.CreateTemp(dir, ".upload-*.pdf")
	if err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to create temp file", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to write PDF file", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to write PDF file", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to move PDF into place", err)
	}

	s.logger.Info("PDF archived", zap.String("key", key), zap.Int("size", len(data)))
	return &StoreResult{Key: key, Size: int64(len(data))}, nil
}

// Get opens an archived PDF by key
func (s *FileSystemStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewRenderError(ErrCodeStorageFailed, "PDF not found", ErrArchiveNotFound)
		}
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to open PDF file", err)
	}
	return file, nil
}

// Delete removes an archived PDF
func (s *FileSystemStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return NewRenderError(ErrCodeStorageFailed, "failed to delete PDF file", err)
	}
	return nil
}

// resolve maps a key to a path under the base directory, rejecting
// anything that could escape it
func (s *FileSystemStorage) resolve(key string) (string, error) {
	cleanPath := filepath.Clean(key)
	if key == "" || filepath.IsAbs(cleanPath) || containsDotDot(key) {
		s.logger.Warn("blocked potentially malicious path", zap.String("key", key))
		return "", NewRenderError(ErrCodeStorageFailed, "invalid path", nil)
	}

	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to resolve base path", err)
	}
	absPath, err := filepath.Abs(filepath.Join(s.basePath, cleanPath))
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to resolve file path", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		s.logger.Warn("path escape attempt blocked",
			zap.String("key", key),
			zap.String("absPath", absPath),
			zap.String("absBase", absBase))
		return "", NewRenderError(ErrCodeStorageFailed, "invalid path", nil)
	}
	return absPath, nil
}

// containsDotDot checks the raw key for ".." components before any cleaning
func containsDotDot(path string) bool {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\' || r == filepath.Separator
	})
	return slices.Contains(parts, "..")
}

var _ PDFStorage = (*FileSystemStorage)(nil)
