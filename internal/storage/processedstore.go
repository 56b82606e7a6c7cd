package storage

// ProcessedStore — интерфейс для загрузки/сохранения списка уже нарезанных файлов.
// Ключ — путь к исходной выгрузке, значение — её размер на момент обработки.
type ProcessedStore interface {
	Load() (map[string]int64, error)
	Save(data map[string]int64) error
}
