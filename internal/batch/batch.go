package batch

import (
	"context"

	"go.uber.org/zap"

	"NetCmdLogParser/internal/models"
	"NetCmdLogParser/internal/transform"
)

// Inserter — получатель пачек строк (ClickHouse)
type Inserter interface {
	InsertRows(ctx context.Context, rows []models.RecordRow) error
}

// Stats — сколько записей отправлено, пропущено при преобразовании и потеряно при отправке
type Stats struct {
	Sent    int
	Skipped int
	Failed  int
}

// Batcher накапливает строки и отправляет их пачками по batchSize
type Batcher struct {
	batchSize int
	logger    *zap.Logger
	inserter  Inserter
}

// NewBatcher создает новый batcher
func NewBatcher(batchSize int, logger *zap.Logger, inserter Inserter) *Batcher {
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Batcher{batchSize: batchSize, logger: logger, inserter: inserter}
}

// Export проходит по всем записям прогона и отправляет их пачками.
// Ошибка отправки пачки логируется и не прерывает выгрузку остальных.
func (b *Batcher) Export(ctx context.Context, rs *models.ResultSet) Stats {
	var st Stats
	batch := make([]models.RecordRow, 0, b.batchSize)

	flush := func(reason string) {
		if len(batch) == 0 {
			return
		}
		b.logger.Info("Отправляем batch в ClickHouse", zap.Int("count", len(batch)), zap.String("reason", reason))
		if err := b.inserter.InsertRows(ctx, batch); err != nil {
			b.logger.Error("Ошибка при отправке batch в ClickHouse", zap.Error(err))
			st.Failed += len(batch)
		} else {
			st.Sent += len(batch)
		}
		batch = batch[:0]
	}

	for _, cmd := range rs.Commands() {
		for _, rec := range rs.Records(cmd) {
			if ctx.Err() != nil {
				flush("graceful shutdown")
				return st
			}
			row, err := transform.ToRow(cmd, rec)
			if err != nil {
				b.logger.Warn("Некорректная запись пропущена", zap.Error(err), zap.String("command", cmd))
				st.Skipped++
				continue
			}
			batch = append(batch, row)
			if len(batch) >= b.batchSize {
				flush("batch size reached")
			}
		}
	}
	flush("end of run")
	return st
}
