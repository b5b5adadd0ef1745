// Package startupinfo persists the startup history record used by the
// reboot loop detector.
//
// The file holds a single line "<epoch seconds> <reboot count>". Writes go
// to a sibling "<path>.tmp" and are renamed over the canonical path, so a
// reader sees either the previous record or the new one, never a torn write.
package startupinfo

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// DefaultPath is where the record lives unless configured otherwise.
const DefaultPath = "/var/lib/dsme/startup_info"

// TmpSuffix is appended to the canonical path to form the staging file.
const TmpSuffix = ".tmp"

// FileStore is a single-record file store.
// It is accessed once per boot by a single writer; no locking.
type FileStore struct {
	path string
	log  zerolog.Logger
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string, log zerolog.Logger) *FileStore {
	if path == "" {
		path = DefaultPath
	}
	return &FileStore{
		path: path,
		log:  log.With().Str("file", path).Logger(),
	}
}

// Path returns the canonical file path.
func (s *FileStore) Path() string { return s.path }

// TmpPath returns the staging file path.
func (s *FileStore) TmpPath() string { return s.path + TmpSuffix }

// Load reads the canonical record.
// Missing, unreadable and malformed files all report ok=false. Only the
// canonical path is read; a leftover staging file is ignored.
func (s *FileStore) Load() (Record, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.log.Debug().Err(err).Msg("no startup info")
		return Record{}, false
	}

	rec, err := Decode(data)
	if err != nil {
		s.log.Debug().Err(err).Msg("error reading startup info")
		return Record{}, false
	}

	return rec, true
}

// Save writes the record to the staging file and renames it over the
// canonical path. If any step before the rename fails, the canonical file
// is left untouched and the staging file is removed.
func (s *FileStore) Save(r Record) error {
	tmp := s.TmpPath()

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("startupinfo: open %s: %w", tmp, err)
	}

	ok := true
	var firstErr error

	if _, err := f.Write(Encode(r)); err != nil {
		ok = false
		firstErr = fmt.Errorf("startupinfo: write %s: %w", tmp, err)
	}

	if ok {
		if err := f.Sync(); err != nil {
			ok = false
			firstErr = fmt.Errorf("startupinfo: sync %s: %w", tmp, err)
		}
	}

	if err := f.Close(); err != nil && ok {
		ok = false
		firstErr = fmt.Errorf("startupinfo: close %s: %w", tmp, err)
	}

	if !ok {
		_ = os.Remove(tmp)
		return firstErr
	}

	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("startupinfo: rename to %s: %w", s.path, err)
	}

	return nil
}
