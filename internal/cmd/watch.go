package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"NetCmdLogParser/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Повторять extract при изменениях во входной папке или карте команд",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, rootLogger, ctx, cancel, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cancel()
	defer rootLogger.Sync()
	lg := rootLogger.Named("watcher")

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	// проверяем карту сразу, чтобы ошибка в ней остановила запуск, а не каждый прогон
	if _, err := loadCommands(cfg, rootLogger); err != nil {
		return err
	}

	w := watcher.New(watcher.Config{
		InputDir:        inputDir,
		CommandsMapFile: cfg.Extract.CommandsMapFile,
		LogExtension:    cfg.Extract.LogExtension,
		Debounce:        cfg.DebounceInterval(),
		Logger:          lg,
	}, func(ctx context.Context) {
		commands, err := loadCommands(cfg, rootLogger)
		if err != nil {
			lg.Error("Ошибка загрузки карты команд, прогон пропущен", zap.Error(err))
			return
		}
		if err := extractOnce(ctx, cfg, commands, rootLogger); err != nil {
			lg.Error("Ошибка прогона", zap.Error(err))
		}
	})

	lg.Info("Наблюдение запущено", zap.String("input", inputDir), zap.String("output", outputDir))
	return w.Start(ctx)
}
