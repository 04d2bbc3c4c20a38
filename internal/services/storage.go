package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DocumentStore keeps uploaded student documents on local disk under one
// base directory, one subdirectory per student. Stored names are generated,
// never taken from the upload, so a crafted filename cannot escape the base.
type DocumentStore struct {
	baseDir string
}

// NewDocumentStore creates the base directory if needed
func NewDocumentStore(baseDir string) (*DocumentStore, error) {
	if baseDir == "" {
		baseDir = "./data/documents"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create document dir: %w", err)
	}
	return &DocumentStore{baseDir: baseDir}, nil
}

// Save writes the uploaded content to disk and returns the stored relative
// path and the byte count. The original name only contributes its extension.
func (s *DocumentStore) Save(studentID uint, originalName string, r io.Reader) (string, int64, error) {
	dir := filepath.Join(s.baseDir, fmt.Sprintf("student_%d", studentID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create student dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.New().String() + ext
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("failed to write file: %w", err)
	}

	rel, err := filepath.Rel(s.baseDir, path)
	if err != nil {
		return "", 0, err
	}
	return rel, size, nil
}

// Open returns the stored file for download. The path is re-anchored to the
// base directory and rejected if it resolves outside it.
func (s *DocumentStore) Open(storedPath string) (*os.File, error) {
	full, err := s.resolve(storedPath)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// Remove deletes the stored file; a missing file is not an error, the
// metadata row is the source of truth
func (s *DocumentStore) Remove(storedPath string) error {
	full, err := s.resolve(storedPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *DocumentStore) resolve(storedPath string) (string, error) {
	full := filepath.Join(s.baseDir, filepath.Clean("/"+storedPath))
	base, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(full)
	if err != nil {
		return "", err
	}
	if abs != base && !strings.HasPrefix(abs, base+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid document path")
	}
	return full, nil
}
