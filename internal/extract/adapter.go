package extract

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"NetCmdLogParser/internal/models"
)

// ErrTemplateNotFound — для команды нет шаблона; файл даёт ноль записей
var ErrTemplateNotFound = errors.New("template not found")

// Row — одна разобранная строка: поля по заголовку и исходные значения (для raw)
type Row struct {
	Fields models.Record
	Values []string
}

// Raw — значения строки через пробел
func (r Row) Raw() string {
	return strings.Join(r.Values, " ")
}

// Adapter находит шаблон команды и прогоняет через движок очищенный текст
type Adapter struct {
	TemplateDir string
	Platform    string
	Engine      Engine
	Timeout     time.Duration // 0 — без ограничения
}

func NewAdapter(templateDir, platform string, engine Engine, timeout time.Duration) *Adapter {
	return &Adapter{TemplateDir: templateDir, Platform: platform, Engine: engine, Timeout: timeout}
}

// TemplatePath — {TemplateDir}/{platform}_{команда, пробелы → _}.textfsm
func (a *Adapter) TemplatePath(command string) string {
	name := fmt.Sprintf("%s_%s.textfsm", a.Platform, strings.ReplaceAll(command, " ", "_"))
	return filepath.Clean(filepath.Join(a.TemplateDir, name))
}

// Extract разбирает текст шаблоном команды.
// Нет шаблона — ErrTemplateNotFound; сбой или таймаут движка — ошибка уровня файла.
func (a *Adapter) Extract(ctx context.Context, command, text string) ([]Row, error) {
	path := a.TemplatePath(command)
	tmpl, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}

	header, values, err := a.match(ctx, string(tmpl), text)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", filepath.Base(path), err)
	}

	rows := make([]Row, 0, len(values))
	for _, v := range values {
		rec := make(models.Record, len(header))
		for i, name := range header {
			if i < len(v) {
				rec[name] = v[i]
			} else {
				rec[name] = ""
			}
		}
		rows = append(rows, Row{Fields: rec, Values: v})
	}
	return rows, nil
}

type matchResult struct {
	header []string
	rows   [][]string
	err    error
}

// match вызывает движок под ограничением времени. Зависший движок не блокирует
// весь прогон: по таймауту файл считается ошибочным, горутина доработает сама.
func (a *Adapter) match(ctx context.Context, tmpl, text string) ([]string, [][]string, error) {
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}

	done := make(chan matchResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- matchResult{err: fmt.Errorf("engine panic: %v", r)}
			}
		}()
		h, rows, err := a.Engine.Match(tmpl, text)
		done <- matchResult{header: h, rows: rows, err: err}
	}()

	select {
	case res := <-done:
		return res.header, res.rows, res.err
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("engine: %w", ctx.Err())
	}
}
