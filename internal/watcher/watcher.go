package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

type Config struct {
	InputDir        string
	CommandsMapFile string // изменение карты команд тоже запускает разбор
	LogExtension    string
	Debounce        time.Duration
	Logger          *zap.Logger
}

// Watcher следит за деревом входных файлов и после паузы в событиях вызывает onChange.
// onChange вызывается из той же горутины, что и Start, поэтому прогоны не пересекаются.
type Watcher struct {
	cfg         Config
	onChange    func(ctx context.Context)
	mapPath     string
	watchedDirs map[string]struct{} // отслеживаемые директории
}

func New(cfg Config, onChange func(ctx context.Context)) *Watcher {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	w := &Watcher{
		cfg:         cfg,
		onChange:    onChange,
		watchedDirs: make(map[string]struct{}),
	}
	if cfg.CommandsMapFile != "" {
		if abs, err := filepath.Abs(cfg.CommandsMapFile); err == nil {
			w.mapPath = abs
		}
	}
	return w
}

// addWatchers рекурсивно добавляет наблюдателей для директорий
func (w *Watcher) addWatchers(dir string, dw *fsnotify.Watcher) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.cfg.Logger.Debug("Ошибка при обходе директории", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if _, exists := w.watchedDirs[path]; exists {
			return nil
		}
		if err := dw.Add(path); err != nil {
			w.cfg.Logger.Error("Ошибка добавления наблюдателя", zap.String("dir", path), zap.Error(err))
			return nil
		}
		w.watchedDirs[path] = struct{}{}
		w.cfg.Logger.Debug("Добавлен наблюдатель для директории", zap.String("dir", path))
		return nil
	})
}

// relevant решает, должно ли событие запустить новый прогон
func (w *Watcher) relevant(ev fsnotify.Event, dw *fsnotify.Watcher) bool {
	if w.mapPath != "" {
		if abs, err := filepath.Abs(ev.Name); err == nil && abs == w.mapPath {
			w.cfg.Logger.Info("Карта команд изменилась", zap.String("path", ev.Name))
			return true
		}
	}
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addWatchers(ev.Name, dw); err != nil {
				w.cfg.Logger.Warn("Не удалось добавить наблюдателей", zap.String("dir", ev.Name), zap.Error(err))
			}
			return true
		}
	}
	if ev.Op&fsnotify.Remove != 0 {
		delete(w.watchedDirs, ev.Name)
	}
	if !strings.HasSuffix(strings.ToLower(ev.Name), strings.ToLower(w.cfg.LogExtension)) {
		return false
	}
	return ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}

// Start выполняет первый прогон и дальше перезапускает разбор на изменения. Блокирует до отмены ctx.
func (w *Watcher) Start(ctx context.Context) error {
	dw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer dw.Close()

	if err := w.addWatchers(w.cfg.InputDir, dw); err != nil {
		return err
	}
	if w.mapPath != "" {
		dir := filepath.Dir(w.mapPath)
		if _, watched := w.watchedDirs[dir]; !watched {
			if err := dw.Add(dir); err != nil {
				w.cfg.Logger.Warn("Не удалось следить за картой команд", zap.String("path", w.mapPath), zap.Error(err))
			}
		}
	}

	w.onChange(ctx)

	var debounce *time.Timer
	var fire <-chan time.Time
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.cfg.Logger.Info("Watcher остановлен по сигналу shutdown")
			return nil
		case ev, ok := <-dw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev, dw) {
				continue
			}
			w.cfg.Logger.Debug("Изменение во входных данных", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			if debounce == nil {
				debounce = time.NewTimer(w.cfg.Debounce)
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(w.cfg.Debounce)
			}
			fire = debounce.C
		case err, ok := <-dw.Errors:
			if !ok {
				return nil
			}
			w.cfg.Logger.Error("Ошибка watcher для каталогов", zap.Error(err))
		case <-fire:
			fire = nil
			w.onChange(ctx)
		}
	}
}
