package splitter

import (
	"NetCmdLogParser/internal/storage"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

type Config struct {
	RootDir         string
	OutputDir       string
	ExcludedFolders []string
	Separators      []string
	LineBreakToken  string
	Logger          *zap.Logger
	Store           storage.ProcessedStore // nil — обрабатываем все файлы каждый раз
}

// Stats — итоги прохода по дереву выгрузок
type Stats struct {
	Files       int
	Chunks      int
	NoSeparator int
	Unchanged   int
	Failed      int
}

type Splitter struct {
	cfg       Config
	patterns  []*regexp.Regexp
	excluded  map[string]struct{}
	processed map[string]int64
}

func New(cfg Config) (*Splitter, error) {
	if len(cfg.Separators) == 0 {
		return nil, fmt.Errorf("separators must not be empty")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	s := &Splitter{
		cfg:       cfg,
		patterns:  runPatterns(cfg.Separators),
		excluded:  make(map[string]struct{}, len(cfg.ExcludedFolders)),
		processed: make(map[string]int64),
	}
	for _, d := range cfg.ExcludedFolders {
		s.excluded[d] = struct{}{}
	}
	if cfg.Store != nil {
		processed, err := cfg.Store.Load()
		if err != nil {
			cfg.Logger.Error("Не удалось загрузить список обработанных файлов", zap.Error(err))
		} else {
			s.processed = processed
		}
	}
	return s, nil
}

// PartName — имя файла для куска: {base}_clean_part{N}.log
func PartName(sourcePath string, ordinal int) string {
	base := filepath.Base(sourcePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s_clean_part%d.log", base, ordinal)
}

// OutputFolder — папка для кусков файла: {OutputDir}/{родительская папка}_clean
func (s *Splitter) OutputFolder(sourcePath string) string {
	parent := filepath.Base(filepath.Dir(sourcePath))
	return filepath.Join(s.cfg.OutputDir, parent+"_clean")
}

// ProcessFile нарезает один файл и сохраняет уцелевшие куски.
// Возвращает пути записанных файлов; ErrNoSeparator, если разделитель не найден.
func (s *Splitter) ProcessFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	text := Normalize(string(data), s.cfg.LineBreakToken)

	sep, pieces, err := splitWith(text, s.patterns)
	if err != nil {
		return nil, err
	}

	outDir := s.OutputFolder(path)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", outDir, err)
	}

	written := make([]string, 0, len(pieces))
	for _, p := range pieces {
		out := filepath.Join(outDir, PartName(path, p.Ordinal))
		if err := os.WriteFile(out, []byte(p.Text), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", out, err)
		}
		written = append(written, out)
	}
	s.cfg.Logger.Debug("Файл нарезан",
		zap.String("file", path),
		zap.String("separator", sep),
		zap.Int("parts", len(written)))
	return written, nil
}

// Run обходит RootDir и нарезает каждый файл. Ошибка одного файла не прерывает обход;
// фатальна только невозможность создать OutputDir.
func (s *Splitter) Run(ctx context.Context) (Stats, error) {
	var st Stats
	lg := s.cfg.Logger

	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		return st, fmt.Errorf("create output dir: %w", err)
	}
	outAbs, _ := filepath.Abs(s.cfg.OutputDir)

	err := filepath.WalkDir(s.cfg.RootDir, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			lg.Warn("Ошибка при обходе директории", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			if path == s.cfg.RootDir {
				return nil
			}
			if _, skip := s.excluded[d.Name()]; skip {
				return filepath.SkipDir
			}
			if abs, _ := filepath.Abs(path); abs == outAbs {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		st.Files++
		info, err := d.Info()
		if err != nil {
			lg.Error("Не удалось прочитать атрибуты файла", zap.String("file", path), zap.Error(err))
			st.Failed++
			return nil
		}
		if size, ok := s.processed[path]; ok && s.cfg.Store != nil && size == info.Size() {
			lg.Debug("Пропускаем ранее нарезанный файл", zap.String("file", path))
			st.Unchanged++
			return nil
		}

		written, err := s.ProcessFile(path)
		switch {
		case errors.Is(err, ErrNoSeparator):
			lg.Info("Разделитель не найден", zap.String("file", path))
			st.NoSeparator++
		case err != nil:
			lg.Error("Ошибка нарезки файла", zap.String("file", path), zap.Error(err))
			st.Failed++
			return nil
		default:
			lg.Info("Куски сохранены",
				zap.String("folder", s.OutputFolder(path)),
				zap.String("base", strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))),
				zap.Int("count", len(written)))
			st.Chunks += len(written)
		}
		s.processed[path] = info.Size()
		return nil
	})

	if s.cfg.Store != nil {
		if serr := s.cfg.Store.Save(s.processed); serr != nil {
			lg.Error("Не удалось сохранить список обработанных файлов", zap.Error(serr))
		}
	}
	if err != nil {
		return st, err
	}
	return st, nil
}
