package storage

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sync"
)

type FileStore struct {
	Path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (f *FileStore) Load() (map[string]int64, error) {
	processed := make(map[string]int64)
	bs, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return processed, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(bs, &processed); err != nil {
		return nil, err
	}
	return processed, nil
}

func (f *FileStore) Save(data map[string]int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tmp := f.Path + ".tmp"
	bs, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	// Запись во временный файл
	if err := os.WriteFile(tmp, bs, 0o644); err != nil {
		return err
	}
	// Удаляем старый файл, чтобы Rename не ошибся (актуально для Windows)
	_ = os.Remove(f.Path)
	// Атомарно переименовываем временный файл в основной
	return os.Rename(tmp, f.Path)
}
