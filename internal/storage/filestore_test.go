package storage

import (
	"os"
	"path/filepath"
	"testing"

	"NetCmdLogParser/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_LoadMissing(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "processed.json"))
	data, err := fs.Load()
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestFileStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.json")
	fs := NewFileStore(path)

	in := map[string]int64{"/captures/site1/r1.txt": 1024, "/captures/site2/r2.txt": 77}
	require.NoError(t, fs.Save(in))
	require.NoError(t, fs.Save(in)) // повторное сохранение поверх существующего файла

	out, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_Corrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := NewFileStore(path).Load()
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	cfg := &config.Config{}
	st, err := New(cfg)
	require.NoError(t, err)
	assert.Nil(t, st)

	cfg.ProcessedStorage = "file"
	cfg.ProcessedFile = filepath.Join(t.TempDir(), "p.json")
	st, err = New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, st)

	cfg.ProcessedStorage = "s3"
	_, err = New(cfg)
	assert.Error(t, err)
}
