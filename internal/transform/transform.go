package transform

import (
	"NetCmdLogParser/internal/models"
	"fmt"
	"time"
)

var enrichmentFields = map[string]struct{}{
	models.FieldRaw:        {},
	models.FieldSourceFile: {},
	models.FieldDeviceName: {},
	models.FieldDeviceIP:   {},
	models.FieldTimestamp:  {},
}

// ToRow раскладывает запись на служебные колонки и Map полей шаблона.
// Время извлечения разбирается в локальной зоне, как и записывалось.
func ToRow(command string, rec models.Record) (models.RecordRow, error) {
	ts, ok := rec[models.FieldTimestamp]
	if !ok {
		return models.RecordRow{}, fmt.Errorf("нет поля %s", models.FieldTimestamp)
	}
	extractedAt, err := time.ParseInLocation(models.TimestampLayout, ts, time.Local)
	if err != nil {
		return models.RecordRow{}, fmt.Errorf("недопустимый timestamp %q: %w", ts, err)
	}

	fields := make(map[string]string, len(rec))
	for k, v := range rec {
		if _, skip := enrichmentFields[k]; skip {
			continue
		}
		fields[k] = v
	}

	return models.RecordRow{
		Command:     command,
		SourceFile:  rec[models.FieldSourceFile],
		DeviceName:  rec[models.FieldDeviceName],
		DeviceIP:    rec[models.FieldDeviceIP],
		ExtractedAt: extractedAt,
		Raw:         rec[models.FieldRaw],
		Fields:      fields,
	}, nil
}
