package batch

import (
	"context"
	"errors"
	"testing"

	"NetCmdLogParser/internal/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeInserter struct {
	batches [][]models.RecordRow
	failOn  int // номер пачки (с 1), на которой вернуть ошибку
}

func (f *fakeInserter) InsertRows(_ context.Context, rows []models.RecordRow) error {
	cp := make([]models.RecordRow, len(rows))
	copy(cp, rows)
	f.batches = append(f.batches, cp)
	if len(f.batches) == f.failOn {
		return errors.New("clickhouse unavailable")
	}
	return nil
}

func record(v string) models.Record {
	rec := models.Record{"VERSION": v}
	rec.Enrich(v, models.Provenance{SourceFile: "a.log", DeviceName: "r1", DeviceIP: "10.0.0.1", Timestamp: "2026-10-19 12:30"})
	return rec
}

func TestExport_SplitsIntoBatches(t *testing.T) {
	rs := models.NewResultSet()
	rs.Add("show version", record("1"), record("2"), record("3"))
	rs.Add("show clock", record("4"), record("5"))

	ins := &fakeInserter{}
	st := NewBatcher(2, zap.NewNop(), ins).Export(context.Background(), rs)

	assert.Equal(t, Stats{Sent: 5}, st)
	if assert.Len(t, ins.batches, 3) {
		assert.Len(t, ins.batches[0], 2)
		assert.Equal(t, "show version", ins.batches[1][0].Command)
		assert.Equal(t, "show clock", ins.batches[1][1].Command)
		assert.Len(t, ins.batches[2], 1)
	}
}

func TestExport_FailedBatchDoesNotStopExport(t *testing.T) {
	rs := models.NewResultSet()
	rs.Add("show version", record("1"), record("2"), record("3"))
	bad := models.Record{"VERSION": "x", "timestamp": "not a time"}
	rs.Add("show clock", bad)

	ins := &fakeInserter{failOn: 1}
	st := NewBatcher(2, zap.NewNop(), ins).Export(context.Background(), rs)

	assert.Equal(t, Stats{Sent: 1, Failed: 2, Skipped: 1}, st)
	assert.Len(t, ins.batches, 2)
}

func TestExport_Empty(t *testing.T) {
	ins := &fakeInserter{}
	st := NewBatcher(10, zap.NewNop(), ins).Export(context.Background(), models.NewResultSet())
	assert.Equal(t, Stats{}, st)
	assert.Empty(t, ins.batches)
}
