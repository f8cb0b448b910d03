package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FileStore persists the history blob as a JSON file on disk. This is the
// local-storage analogue used by the CLI: one file, read once at startup,
// overwritten in full on every mutation.
type FileStore struct {
	path   string
	logger *slog.Logger
}

// NewFileStore creates a store backed by the given file path. The parent
// directory is created on first Save if it does not exist.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Load reads and deserializes the history file. A missing or unreadable file
// and a corrupted blob all yield an empty history; corruption is not
// distinguished from absence.
func (s *FileStore) Load(ctx context.Context) (History, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WarnContext(ctx, "could not read history file, starting empty",
				"path", s.path,
				"error", err,
			)
		}
		return History{}, nil
	}

	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		s.logger.WarnContext(ctx, "history file is corrupted, starting empty",
			"path", s.path,
			"error", err,
		)
		return History{}, nil
	}
	return h, nil
}

// Save serializes the full history and overwrites the file. The write goes
// through a temp file and rename so a crash mid-write cannot leave a
// half-written blob.
func (s *FileStore) Save(ctx context.Context, h History) error {
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*")
	if err != nil {
		return fmt.Errorf("failed to create temp history file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close history file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace history file: %w", err)
	}

	s.logger.DebugContext(ctx, "history persisted", "path", s.path, "records", len(h))
	return nil
}
