package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// SplitterConfig — настройки стадии нарезки сырых выгрузок на куски по командам
type SplitterConfig struct {
	RootDir         string   `mapstructure:"RootDir"`         // корневая папка с выгрузками
	OutputDir       string   `mapstructure:"OutputDir"`       // куда складывать *_clean папки
	ExcludedFolders []string `mapstructure:"ExcludedFolders"` // имена папок, которые не обходим
	Separators      []string `mapstructure:"Separators"`      // кандидаты в разделители
	LineBreakToken  string   `mapstructure:"LineBreakToken"`  // литерал, заменяемый на \n до нарезки
}

// ExtractConfig — настройки стадии классификации и разбора шаблонами TextFSM
type ExtractConfig struct {
	TemplateDir     string `mapstructure:"TemplateDir"`
	Platform        string `mapstructure:"Platform"`
	CommandsMapFile string `mapstructure:"CommandsMapFile"`
	LogExtension    string `mapstructure:"LogExtension"`
	FileTimeout     int    `mapstructure:"FileTimeout"` // секунды, 0 — без ограничения
}

// ClickHouseConfig содержит настройки необязательной выгрузки записей в ClickHouse
// Поля Address и Database обязательны, если Enabled
type ClickHouseConfig struct {
	Enabled  bool   `mapstructure:"Enabled"`
	Address  string `mapstructure:"Address"`
	Username string `mapstructure:"Username"`
	Password string `mapstructure:"Password"`
	Database string `mapstructure:"Database"`
	Table    string `mapstructure:"Table"`
	Protocol string `mapstructure:"Protocol"` // "native" или "http"
}

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Host     string `mapstructure:"Host"`
	Port     int    `mapstructure:"Port"`
	DB       int    `mapstructure:"DB"`
	Password string `mapstructure:"Password"`
	Key      string `mapstructure:"Key"`
}

// LoggingConfig содержит настройки логирования и интеграции с Sentry
type LoggingConfig struct {
	Level        string `mapstructure:"Level"`        // debug, info, warn, error
	LogFile      string `mapstructure:"LogFile"`      // путь к файлу логов (только Error+)
	SentryDSN    string `mapstructure:"SentryDSN"`    // DSN для Sentry
	EnableSentry bool   `mapstructure:"EnableSentry"` // включить отправку ошибок в Sentry
}

// WatchConfig — настройки режима наблюдения
type WatchConfig struct {
	Debounce int `mapstructure:"Debounce"` // миллисекунды тишины перед перезапуском разбора
}

// Config описывает все настройки netlogparse.
// Загружается из YAML через viper, любое поле можно переопределить
// переменной окружения NETLOG_<СЕКЦИЯ>_<ПОЛЕ>, например NETLOG_EXTRACT_PLATFORM.
type Config struct {
	Splitter SplitterConfig `mapstructure:"Splitter"`
	Extract  ExtractConfig  `mapstructure:"Extract"`

	ClickHouse       ClickHouseConfig `mapstructure:"ClickHouse"`
	BatchSize        int              `mapstructure:"BatchSize"`
	ProcessedStorage string           `mapstructure:"ProcessedStorage"` // "", "file" или "redis"
	ProcessedFile    string           `mapstructure:"ProcessedFile"`
	Redis            RedisConfig      `mapstructure:"Redis"`
	Logging          LoggingConfig    `mapstructure:"Logging"`
	Watch            WatchConfig      `mapstructure:"Watch"`
}

// FileTimeout возвращает ограничение времени на разбор одного файла
func (c *Config) FileTimeout() time.Duration {
	return time.Duration(c.Extract.FileTimeout) * time.Second
}

// DebounceInterval возвращает паузу перед перезапуском разбора в режиме watch
func (c *Config) DebounceInterval() time.Duration {
	return time.Duration(c.Watch.Debounce) * time.Millisecond
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("Splitter.RootDir", ".")
	v.SetDefault("Splitter.OutputDir", "output_paging")
	v.SetDefault("Splitter.ExcludedFolders", []string{"output_paging", "scripts", "scripts-test"})
	v.SetDefault("Splitter.Separators", []string{"__", "pop up"})
	v.SetDefault("Splitter.LineBreakToken", "</br>")

	v.SetDefault("Extract.TemplateDir", "./ntc-templates/templates")
	v.SetDefault("Extract.Platform", "cisco_ios")
	v.SetDefault("Extract.CommandsMapFile", "commands_map.json")
	v.SetDefault("Extract.LogExtension", ".log")
	v.SetDefault("Extract.FileTimeout", 30)

	v.SetDefault("ClickHouse.Enabled", false)
	v.SetDefault("ClickHouse.Address", "")
	v.SetDefault("ClickHouse.Username", "")
	v.SetDefault("ClickHouse.Password", "")
	v.SetDefault("ClickHouse.Database", "")
	v.SetDefault("ClickHouse.Table", "netlog_records")
	v.SetDefault("ClickHouse.Protocol", "native")
	v.SetDefault("BatchSize", 1000)

	v.SetDefault("ProcessedStorage", "")
	v.SetDefault("ProcessedFile", "processed_files.json")
	v.SetDefault("Redis.Host", "localhost")
	v.SetDefault("Redis.Port", 6379)
	v.SetDefault("Redis.DB", 0)
	v.SetDefault("Redis.Password", "")
	v.SetDefault("Redis.Key", "netlogparse:processed")

	v.SetDefault("Logging.Level", "info")
	v.SetDefault("Logging.LogFile", "")
	v.SetDefault("Logging.SentryDSN", "")
	v.SetDefault("Logging.EnableSentry", false)

	v.SetDefault("Watch.Debounce", 2000)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("NETLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Default возвращает конфигурацию по умолчанию (с учётом переменных окружения)
func Default() (*Config, error) {
	v := newViper()
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// LoadConfig читает и парсит конфиг из YAML-файла по указанному пути.
// Шаги:
// 1. Чтение сырого файла
// 2. Очистка данных: удаление BOM, замена табуляций
// 3. Разбор через viper поверх значений по умолчанию
// 4. Валидация
func LoadConfig(path string) (*Config, error) {
	// 1. Чтение
	raw, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// 2. Очистка
	sanitized := sanitize(raw)

	// 3. Разбор
	v := newViper()
	if err := v.ReadConfig(bytes.NewReader(sanitized)); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 4. Валидация
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// readFile читает все байты из файла по пути
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// sanitize удаляет BOM и табуляции
func sanitize(data []byte) []byte {
	// Удаляем UTF-8 BOM
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	// Заменяем табы на два пробела
	data = bytes.ReplaceAll(data, []byte("\t"), []byte("  "))
	return data
}

// Validate проверяет обязательные поля конфигурации
func (c *Config) Validate() error {
	if len(c.Splitter.Separators) == 0 {
		return fmt.Errorf("Splitter.Separators must not be empty")
	}
	for _, s := range c.Splitter.Separators {
		if s == "" {
			return fmt.Errorf("Splitter.Separators must not contain empty tokens")
		}
	}
	if c.Splitter.OutputDir == "" {
		return fmt.Errorf("Splitter.OutputDir must not be empty")
	}
	if c.Extract.LogExtension == "" {
		return fmt.Errorf("Extract.LogExtension must not be empty")
	}
	if c.Extract.Platform == "" {
		return fmt.Errorf("Extract.Platform must not be empty")
	}
	if c.Extract.FileTimeout < 0 {
		return fmt.Errorf("Extract.FileTimeout must not be negative")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("Watch.Debounce must not be negative")
	}
	if c.ClickHouse.Enabled {
		if c.ClickHouse.Address == "" {
			return fmt.Errorf("ClickHouse.Address must not be empty")
		}
		if c.ClickHouse.Database == "" {
			return fmt.Errorf("ClickHouse.Database must not be empty")
		}
		if c.ClickHouse.Table == "" {
			return fmt.Errorf("ClickHouse.Table must not be empty")
		}
		if c.BatchSize <= 0 {
			return fmt.Errorf("BatchSize must be positive")
		}
	}
	switch c.ProcessedStorage {
	case "":
	case "file":
		if c.ProcessedFile == "" {
			return fmt.Errorf("ProcessedFile must not be empty for file storage")
		}
	case "redis":
		if c.Redis.Host == "" || c.Redis.Port <= 0 {
			return fmt.Errorf("Redis.Host and Redis.Port are required for redis storage")
		}
	default:
		return fmt.Errorf("ProcessedStorage must be \"file\" or \"redis\", got %q", c.ProcessedStorage)
	}
	return nil
}
