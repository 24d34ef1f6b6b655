package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// localStorage implements Storage on the local file system. The directory is
// expected to be served statically under baseURL.
type localStorage struct {
	dir     string
	baseURL string
	logger  zerolog.Logger
}

// NewLocalStorage creates a file system media store rooted at dir.
func NewLocalStorage(dir, baseURL string, logger zerolog.Logger) Storage {
	return &localStorage{
		dir:     dir,
		baseURL: baseURL,
		logger:  logger.With().Str("component", "local-media-storage").Logger(),
	}
}

func (s *localStorage) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	target, err := s.resolve(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		s.logger.Error().Err(err).Str("dir", filepath.Dir(target)).Msg("failed to create media directory")
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	file, err := os.Create(target)
	if err != nil {
		s.logger.Error().Err(err).Str("file", target).Msg("failed to create media file")
		return "", fmt.Errorf("failed to create media file %s: %w", target, err)
	}
	defer file.Close()

	written, err := io.Copy(file, body)
	if err != nil {
		s.logger.Error().Err(err).Str("file", target).Msg("failed to write media file")
		return "", fmt.Errorf("failed to write media file %s: %w", target, err)
	}

	s.logger.Info().Str("file", target).Int64("size", written).Msg("media written to local storage")
	return publicURL(s.baseURL, key), nil
}

func (s *localStorage) Delete(ctx context.Context, key string) error {
	target, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete media file %s: %w", target, err)
	}
	return nil
}

// resolve maps key into the storage directory and rejects keys escaping it.
func (s *localStorage) resolve(key string) (string, error) {
	target := filepath.Join(s.dir, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid media key %q", key)
	}
	return target, nil
}
