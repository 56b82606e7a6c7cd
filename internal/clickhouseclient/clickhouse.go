package clickhouseclient

import (
	"NetCmdLogParser/internal/config"
	"NetCmdLogParser/internal/models"
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"
)

// Схема таблицы: служебные поля отдельными колонками, поля шаблона — в Map
const createTableSQL = `CREATE TABLE IF NOT EXISTS %s (
	Command     LowCardinality(String),
	SourceFile  String,
	DeviceName  LowCardinality(String),
	DeviceIP    String,
	ExtractedAt DateTime,
	Raw         String,
	Fields      Map(String, String)
) ENGINE = MergeTree
ORDER BY (Command, DeviceName, ExtractedAt)`

type Client struct {
	conn   clickhouse.Conn
	Table  string
	Logger *zap.Logger
}

// New создает клиента ClickHouse
func New(cfg config.ClickHouseConfig, logger *zap.Logger) (*Client, error) {
	protocol := clickhouse.Native
	if cfg.Protocol == "http" {
		protocol = clickhouse.HTTP
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Address},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout: 5 * time.Second,
		Compression: &clickhouse.Compression{Method: clickhouse.CompressionLZ4},
		Protocol:    protocol,
	})
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	return &Client{conn: conn, Table: cfg.Table, Logger: logger}, nil
}

// EnsureTable создает таблицу для записей, если её ещё нет
func (c *Client) EnsureTable(ctx context.Context) error {
	dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := c.conn.Exec(dbCtx, fmt.Sprintf(createTableSQL, c.Table)); err != nil {
		return fmt.Errorf("create table %s: %w", c.Table, err)
	}
	return nil
}

// InsertRows отправляет пачку строк одним batch-запросом
func (c *Client) InsertRows(ctx context.Context, rows []models.RecordRow) error {
	// Отдельный таймаут на пачку, чтобы зависшее соединение не держало прогон
	dbCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	batch, err := c.conn.PrepareBatch(dbCtx,
		"INSERT INTO "+c.Table+" (Command, SourceFile, DeviceName, DeviceIP, ExtractedAt, Raw, Fields)")
	if err != nil {
		c.Logger.Error("prepare batch", zap.Error(err), zap.String("table", c.Table))
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, row := range rows {
		if err := batch.Append(
			row.Command,
			row.SourceFile,
			row.DeviceName,
			row.DeviceIP,
			row.ExtractedAt,
			row.Raw,
			row.Fields,
		); err != nil {
			c.Logger.Error("append batch", zap.Error(err), zap.String("source", row.SourceFile))
			return fmt.Errorf("append: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		c.Logger.Error("send batch", zap.Error(err), zap.String("table", c.Table))
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// Close закрывает соединение с ClickHouse
func (c *Client) Close() error {
	return c.conn.Close()
}
