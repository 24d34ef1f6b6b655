package media

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// fallbackStorage writes to object storage first and falls back to the local
// file system when the upload fails or object storage is disabled.
type fallbackStorage struct {
	remote    Storage
	local     Storage
	prefix    string
	s3Enabled bool
	logger    zerolog.Logger
}

// NewFallbackStorage creates a store that tries remote first, then local.
// If remote is nil only local is used. The prefix is prepended to remote keys.
func NewFallbackStorage(remote, local Storage, prefix string, s3Enabled bool, logger zerolog.Logger) Storage {
	return &fallbackStorage{
		remote:    remote,
		local:     local,
		prefix:    prefix,
		s3Enabled: s3Enabled,
		logger:    logger.With().Str("component", "fallback-media-storage").Logger(),
	}
}

func (f *fallbackStorage) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	if !f.s3Enabled || f.remote == nil {
		f.logger.Debug().
			Bool("s3_enabled", f.s3Enabled).
			Bool("has_remote", f.remote != nil).
			Msg("S3 disabled or not configured, using local file system")
		return f.local.Put(ctx, key, contentType, body, size)
	}

	// The body can only be consumed once, keep a copy for the fallback.
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	remoteKey := f.prefix + key
	url, err := f.remote.Put(ctx, remoteKey, contentType, bytes.NewReader(data), int64(len(data)))
	if err == nil {
		return url, nil
	}

	f.logger.Warn().
		Err(err).
		Str("s3_key", remoteKey).
		Msg("failed to upload to S3, falling back to local file system")

	return f.local.Put(ctx, key, contentType, bytes.NewReader(data), int64(len(data)))
}

func (f *fallbackStorage) Delete(ctx context.Context, key string) error {
	if f.s3Enabled && f.remote != nil {
		if err := f.remote.Delete(ctx, f.prefix+key); err == nil {
			return nil
		}
	}
	return f.local.Delete(ctx, key)
}
