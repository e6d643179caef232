// internal/storage/media.go
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MediaStore persists inbound media payloads on the local filesystem, one
// folder per participant.
type MediaStore interface {
	// SavePhoto stores a photo payload and returns its local path
	SavePhoto(participant string, content []byte) (string, error)

	// ValidatePath checks path security (no traversal, within base)
	ValidatePath(fullPath string) error
}

// LocalMediaStore implements MediaStore for the local filesystem
type LocalMediaStore struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalMediaStore creates a new LocalMediaStore
func NewLocalMediaStore(baseDir string, logger *zap.Logger) *LocalMediaStore {
	return &LocalMediaStore{
		baseDir: baseDir,
		logger:  logger,
	}
}

// SavePhoto stores a photo payload under the participant's folder
func (s *LocalMediaStore) SavePhoto(participant string, content []byte) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("empty media payload")
	}

	fileName := uuid.NewString() + ".jpg"
	fullPath := filepath.Join(s.baseDir, sanitizeFolderName(participant), fileName)

	if err := s.ValidatePath(fullPath); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		s.logger.Error("Failed to create media directory",
			zap.String("path", filepath.Dir(fullPath)),
			zap.Error(err))
		return "", fmt.Errorf("failed to create directories: %w", err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write media file",
			zap.String("path", fullPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("Media saved",
		zap.String("path", fullPath),
		zap.Int("size", len(content)))

	return fullPath, nil
}

// ValidatePath checks that the path is safe and within baseDir
func (s *LocalMediaStore) ValidatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return fmt.Errorf("path escapes base directory: %s", fullPath)
	}

	return nil
}

// sanitizeFolderName strips characters that would break a folder name out of
// a participant identifier
func sanitizeFolderName(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	cleaned := replacer.Replace(name)
	if cleaned == "" {
		cleaned = "unknown"
	}
	return cleaned
}
