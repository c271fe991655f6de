package document

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/google/uuid"
)

// allowedExtensions are the file types accepted as supporting
// documents for a leave request.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// Service stores uploaded supporting documents on local disk under a
// single uploads directory. Stored names are uuid-prefixed so
// uploads never collide or overwrite each other.
type Service struct {
	dir      string
	maxBytes int64
	logger   *slog.Logger
}

func NewService(cfg internal.UploadsConfig, logger *slog.Logger) (*Service, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &Service{
		dir:      cfg.Dir,
		maxBytes: cfg.MaxSizeBytes,
		logger:   logger,
	}, nil
}

// Save writes the uploaded file and returns the stored path reference
// that callers attach to a leave request.
func (s *Service) Save(filename string, size int64, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", internal.NewValidationFieldError("document", "only pdf, png and jpg files are accepted", internal.ErrCodeInvalidDocument)
	}
	if size > s.maxBytes {
		return "", internal.NewValidationFieldError("document",
			fmt.Sprintf("file exceeds the %d MB limit", s.maxBytes/(1<<20)), internal.ErrCodeInvalidDocument)
	}

	storedName := uuid.NewString() + ext
	fullPath := filepath.Join(s.dir, storedName)

	out, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create document file: %w", err)
	}
	defer out.Close()

	written, err := io.Copy(out, io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write document file: %w", err)
	}
	if written > s.maxBytes {
		os.Remove(fullPath)
		return "", internal.NewValidationFieldError("document",
			fmt.Sprintf("file exceeds the %d MB limit", s.maxBytes/(1<<20)), internal.ErrCodeInvalidDocument)
	}

	s.logger.Info("document stored", "stored_name", storedName, "size_bytes", written)

	return "/uploads/" + storedName, nil
}

// Resolve maps a stored path reference back to a file on disk. Only
// bare uuid-named files directly under the uploads directory resolve;
// anything with a path separator is rejected.
func (s *Service) Resolve(ref string) (string, error) {
	name := strings.TrimPrefix(ref, "/uploads/")
	if name == "" || name != filepath.Base(name) {
		return "", internal.ErrDocumentNotFound
	}

	fullPath := filepath.Join(s.dir, name)
	if _, err := os.Stat(fullPath); err != nil {
		return "", internal.ErrDocumentNotFound
	}
	return fullPath, nil
}
