package startupinfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/rebootloopd/internal/logger"
)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "startup_info"), logger.NewTestLogger())
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Record
		wantErr bool
	}{
		{"plain", "1000 0", Record{1000, 0}, false},
		{"trailing newline", "1005 1\n", Record{1005, 1}, false},
		{"extra whitespace", "  1008\t11 \n", Record{1008, 11}, false},
		{"negative timestamp", "-5 3", Record{-5, 3}, false},
		{"empty", "", Record{}, true},
		{"one field", "1000", Record{}, true},
		{"three fields", "1000 1 2", Record{}, true},
		{"garbage", "hello world", Record{}, true},
		{"negative count", "1000 -1", Record{}, true},
		{"count overflow", "1000 4294967296", Record{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.in))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode_Format(t *testing.T) {
	assert.Equal(t, "1008 11", string(Encode(Record{LastStartup: 1008, RebootCount: 11})))
}

func TestSaveLoad(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.Save(Record{LastStartup: 1000, RebootCount: 0}))

	got, ok := s.Load()
	require.True(t, ok)
	assert.Equal(t, Record{1000, 0}, got)

	_, err := os.Stat(s.TmpPath())
	assert.True(t, os.IsNotExist(err), "staging file must not survive a successful save")

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "1000 0", string(data))
}

func TestLoad_MissingEqualsGarbage(t *testing.T) {
	missing := newStore(t)
	_, ok := missing.Load()
	assert.False(t, ok)

	garbage := newStore(t)
	require.NoError(t, os.WriteFile(garbage.Path(), []byte("not a record at all"), 0o644))
	_, ok = garbage.Load()
	assert.False(t, ok)
}

func TestLoad_IgnoresStagingFile(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Save(Record{LastStartup: 1005, RebootCount: 1}))

	// Crash after the staging file was written but before the rename.
	require.NoError(t, os.WriteFile(s.TmpPath(), Encode(Record{LastStartup: 1008, RebootCount: 2}), 0o644))

	got, ok := s.Load()
	require.True(t, ok)
	assert.Equal(t, Record{1005, 1}, got)
}

func TestLoad_IgnoresPartialStagingFile(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Save(Record{LastStartup: 1005, RebootCount: 1}))

	require.NoError(t, os.WriteFile(s.TmpPath(), []byte("10"), 0o644))

	got, ok := s.Load()
	require.True(t, ok)
	assert.Equal(t, Record{1005, 1}, got)
}

func TestSave_OverwritesLeftoverStagingFile(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.WriteFile(s.TmpPath(), []byte("999999 99 junk"), 0o644))

	require.NoError(t, s.Save(Record{LastStartup: 5000, RebootCount: 0}))

	got, ok := s.Load()
	require.True(t, ok)
	assert.Equal(t, Record{5000, 0}, got)
}

func TestSave_StagingFailureLeavesCanonical(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Save(Record{LastStartup: 1000, RebootCount: 4}))

	// A directory at the staging path makes the open fail.
	require.NoError(t, os.Mkdir(s.TmpPath(), 0o755))

	err := s.Save(Record{LastStartup: 1001, RebootCount: 5})
	require.Error(t, err)

	got, ok := s.Load()
	require.True(t, ok)
	assert.Equal(t, Record{1000, 4}, got)
}

func TestSave_RenameFailure(t *testing.T) {
	s := newStore(t)

	// A non-empty directory at the canonical path makes the rename fail.
	require.NoError(t, os.MkdirAll(filepath.Join(s.Path(), "occupied"), 0o755))

	err := s.Save(Record{LastStartup: 1000, RebootCount: 0})
	require.Error(t, err)

	_, statErr := os.Stat(s.TmpPath())
	assert.True(t, os.IsNotExist(statErr), "staging file is removed after a failed rename")

	_, ok := s.Load()
	assert.False(t, ok)
}

func TestNewFileStore_DefaultPath(t *testing.T) {
	s := NewFileStore("", logger.NewTestLogger())
	assert.Equal(t, DefaultPath, s.Path())
	assert.Equal(t, DefaultPath+".tmp", s.TmpPath())
}

func TestSave_WriteFailureRemovesStagingFile(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}

	s := newStore(t)
	require.NoError(t, s.Save(Record{LastStartup: 1000, RebootCount: 4}))

	// Writes through the staging path land on /dev/full and fail with ENOSPC.
	require.NoError(t, os.Symlink("/dev/full", s.TmpPath()))

	err := s.Save(Record{LastStartup: 1001, RebootCount: 5})
	require.Error(t, err)

	_, statErr := os.Lstat(s.TmpPath())
	assert.True(t, os.IsNotExist(statErr), "staging file is removed after a failed write")

	got, ok := s.Load()
	require.True(t, ok)
	assert.Equal(t, Record{1000, 4}, got)
}
