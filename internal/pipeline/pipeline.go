package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"NetCmdLogParser/internal/classifier"
	"NetCmdLogParser/internal/extract"
	"NetCmdLogParser/internal/models"
	"NetCmdLogParser/internal/preprocess"
)

type Config struct {
	Classifier   *classifier.Classifier
	Adapter      *extract.Adapter
	LogExtension string
	Logger       *zap.Logger
	Now          func() time.Time // для тестов; по умолчанию time.Now
}

// Summary — итоги прогона по файлам
type Summary struct {
	Files   int
	Parsed  int
	Skipped int
	Failed  int
	Records int
}

// Pipeline — классификация, очистка и разбор каждого файла дерева с накоплением записей по командам.
// Файлы обрабатываются строго последовательно.
type Pipeline struct {
	cfg Config
	ext string
}

func New(cfg Config) *Pipeline {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Pipeline{cfg: cfg, ext: strings.ToLower(cfg.LogExtension)}
}

// Run обходит inputRoot и возвращает накопленные записи.
// Ошибки отдельных файлов не прерывают обход; ошибка возвращается только при отмене ctx.
func (p *Pipeline) Run(ctx context.Context, inputRoot string) (*models.ResultSet, Summary, error) {
	lg := p.cfg.Logger
	rs := models.NewResultSet()
	var sum Summary

	err := filepath.WalkDir(inputRoot, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			lg.Warn("Ошибка при обходе директории", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), p.ext) {
			return nil
		}

		sum.Files++
		res := p.ProcessFile(ctx, inputRoot, path)
		switch res.Status {
		case models.StatusParsed:
			sum.Parsed++
			sum.Records += len(res.Records)
			rs.Add(res.Command, res.Records...)
			lg.Info("Файл разобран",
				zap.String("file", path),
				zap.String("device", res.DeviceName),
				zap.String("ip", res.DeviceIP),
				zap.String("command", res.Command),
				zap.String("template", res.Template),
				zap.Int("records", len(res.Records)))
		case models.StatusSkipped:
			sum.Skipped++
			lg.Info("Файл пропущен",
				zap.String("file", path),
				zap.String("command", res.Command),
				zap.String("reason", res.Reason))
		case models.StatusFailed:
			sum.Failed++
			lg.Error("Ошибка разбора файла",
				zap.String("file", path),
				zap.String("command", res.Command),
				zap.Error(res.Err))
		}
		return nil
	})
	if err != nil {
		return rs, sum, err
	}
	return rs, sum, nil
}

// ProcessFile обрабатывает один файл и возвращает результат как значение
func (p *Pipeline) ProcessFile(ctx context.Context, root, path string) models.FileResult {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	res := models.FileResult{Path: rel}

	cmd, ok := p.cfg.Classifier.Classify(filepath.Base(path))
	if !ok {
		return skipped(res, "no matching command pattern")
	}
	res.Command = cmd

	data, err := os.ReadFile(path)
	if err != nil {
		return failed(res, fmt.Errorf("read: %w", err))
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if !utf8.Valid(data) {
		return failed(res, errors.New("file is not valid UTF-8"))
	}

	lines := preprocess.SplitLines(string(data))
	if len(lines) == 0 {
		return skipped(res, "empty file")
	}
	chunk := preprocess.Preprocess(lines)
	res.DeviceName, res.DeviceIP = chunk.DeviceName, chunk.DeviceIP
	res.Template = p.cfg.Adapter.TemplatePath(cmd)

	rows, err := p.cfg.Adapter.Extract(ctx, cmd, chunk.Text)
	switch {
	case errors.Is(err, extract.ErrTemplateNotFound):
		return skipped(res, "template not found: "+res.Template)
	case err != nil:
		return failed(res, err)
	}

	res.Records = make([]models.Record, 0, len(rows))
	for _, row := range rows {
		rec := row.Fields
		rec.Enrich(row.Raw(), models.Provenance{
			SourceFile: rel,
			DeviceName: chunk.DeviceName,
			DeviceIP:   chunk.DeviceIP,
			Timestamp:  p.cfg.Now().Format(models.TimestampLayout),
		})
		res.Records = append(res.Records, rec)
	}
	res.Status = models.StatusParsed
	return res
}

func skipped(res models.FileResult, reason string) models.FileResult {
	res.Status = models.StatusSkipped
	res.Reason = reason
	return res
}

func failed(res models.FileResult, err error) models.FileResult {
	res.Status = models.StatusFailed
	res.Err = err
	return res
}
