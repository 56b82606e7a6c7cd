package storage

import (
	"NetCmdLogParser/internal/config"
	"fmt"
)

// New выбирает хранилище по cfg.ProcessedStorage; nil, если инкрементальный режим выключен
func New(cfg *config.Config) (ProcessedStore, error) {
	switch cfg.ProcessedStorage {
	case "":
		return nil, nil
	case "file":
		return NewFileStore(cfg.ProcessedFile), nil
	case "redis":
		rs, err := NewRedisStore(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		return rs, nil
	default:
		return nil, fmt.Errorf("неизвестный ProcessedStorage: %q", cfg.ProcessedStorage)
	}
}
