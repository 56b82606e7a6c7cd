package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"NetCmdLogParser/internal/batch"
	"NetCmdLogParser/internal/classifier"
	"NetCmdLogParser/internal/clickhouseclient"
	"NetCmdLogParser/internal/config"
	"NetCmdLogParser/internal/extract"
	"NetCmdLogParser/internal/models"
	"NetCmdLogParser/internal/output"
	"NetCmdLogParser/internal/pipeline"
)

var (
	inputDir  string
	outputDir string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Разобрать куски шаблонами TextFSM и собрать JSON по командам",
	Long: `Рекурсивно обходит входную папку, определяет команду каждого *.log файла
по карте commands_map, чистит текст и разбирает его шаблоном
<TemplateDir>/<Platform>_<команда>.textfsm. Записи всех файлов собираются
в <output>/<команда>_output.json. Ошибки отдельных файлов не прерывают прогон.

Пример:
  netlogparse extract -i ./output_paging -o ./parsed`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

func init() {
	for _, c := range []*cobra.Command{extractCmd, watchCmd} {
		c.Flags().StringVarP(&inputDir, "input", "i", "", "входная папка (обязательно)")
		c.Flags().StringVarP(&outputDir, "output", "o", "", "папка для JSON (обязательно)")
		_ = c.MarkFlagRequired("input")
		_ = c.MarkFlagRequired("output")
	}
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	cfg, rootLogger, ctx, cancel, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cancel()
	defer rootLogger.Sync()

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	commands, err := loadCommands(cfg, rootLogger)
	if err != nil {
		return err
	}
	return extractOnce(ctx, cfg, commands, rootLogger)
}

// loadCommands — карта команд; некорректная карта — ошибка запуска, отсутствующая — пустая
func loadCommands(cfg *config.Config, lg *zap.Logger) (classifier.CommandMap, error) {
	commands, err := classifier.LoadCommandMap(cfg.Extract.CommandsMapFile)
	if err != nil {
		return nil, err
	}
	if len(commands) == 0 {
		lg.Warn("Карта команд пуста или не найдена, ни один файл не будет классифицирован",
			zap.String("path", cfg.Extract.CommandsMapFile))
	} else {
		lg.Info("Карта команд загружена", zap.Int("count", len(commands)), zap.String("path", cfg.Extract.CommandsMapFile))
	}
	return commands, nil
}

// extractOnce — один полный прогон: обход, разбор, запись JSON и необязательная выгрузка в ClickHouse
func extractOnce(ctx context.Context, cfg *config.Config, commands classifier.CommandMap, rootLogger *zap.Logger) error {
	lg := rootLogger.Named("pipeline")
	p := pipeline.New(pipeline.Config{
		Classifier:   classifier.New(commands, cfg.Extract.LogExtension),
		Adapter:      extract.NewAdapter(cfg.Extract.TemplateDir, cfg.Extract.Platform, extract.NewTextFSMEngine(), cfg.FileTimeout()),
		LogExtension: cfg.Extract.LogExtension,
		Logger:       lg,
	})

	rs, sum, err := p.Run(ctx, inputDir)
	if err != nil {
		return err
	}

	written, err := output.WriteJSON(outputDir, rs)
	if err != nil {
		return err
	}
	for _, w := range written {
		lg.Info("Записи сохранены", zap.Int("count", w.Count), zap.String("file", w.Path))
	}

	if cfg.ClickHouse.Enabled && rs.Len() > 0 {
		exportClickHouse(ctx, cfg, rs, rootLogger.Named("clickhouse"))
	}

	lg.Info("Разбор завершен",
		zap.Int("files", sum.Files),
		zap.Int("parsed", sum.Parsed),
		zap.Int("skipped", sum.Skipped),
		zap.Int("failed", sum.Failed),
		zap.Int("records", sum.Records))
	return nil
}

// exportClickHouse — ошибки выгрузки логируются и не влияют на код выхода
func exportClickHouse(ctx context.Context, cfg *config.Config, rs *models.ResultSet, lg *zap.Logger) {
	ch, err := clickhouseclient.New(cfg.ClickHouse, lg)
	if err != nil {
		lg.Error("Ошибка подключения к ClickHouse", zap.Error(err))
		return
	}
	defer ch.Close()

	if err := ch.EnsureTable(ctx); err != nil {
		lg.Error("Ошибка подготовки таблицы ClickHouse", zap.Error(err))
		return
	}
	st := batch.NewBatcher(cfg.BatchSize, lg.Named("batcher"), ch).Export(ctx, rs)
	lg.Info("Выгрузка в ClickHouse завершена",
		zap.Int("sent", st.Sent),
		zap.Int("skipped", st.Skipped),
		zap.Int("failed", st.Failed))
}
