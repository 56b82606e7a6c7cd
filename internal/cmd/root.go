package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"NetCmdLogParser/internal/config"
	"NetCmdLogParser/internal/logger"
)

var cfgFile string

// rootCmd — базовая команда без подкоманд
var rootCmd = &cobra.Command{
	Use:   "netlogparse",
	Short: "Нарезка и разбор выгрузок команд сетевых устройств",
	Long: `netlogparse режет сырые выгрузки сессий на куски по командам (split),
классифицирует куски по имени файла и разбирает их шаблонами TextFSM,
собирая записи в JSON по одному файлу на команду (extract, watch).`,
	SilenceUsage: true,
}

// Execute запускает корневую команду
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "путь к config.yaml")
}

// loadConfig читает конфиг; отсутствие файла по умолчанию — не ошибка, берутся значения по умолчанию
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		return config.Default()
	}
	return cfg, err
}

// setup — конфиг, логгер и контекст, отменяемый по SIGINT/SIGTERM
func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, context.Context, context.CancelFunc, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	lg, err := logger.InitZap(&cfg.Logging)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("ошибка инициализации логгера: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-stop:
			lg.Info("Получен сигнал остановки, завершаем работу")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(stop)
	}()
	return cfg, lg, ctx, cancel, nil
}
