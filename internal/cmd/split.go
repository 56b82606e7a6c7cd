package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"NetCmdLogParser/internal/splitter"
	"NetCmdLogParser/internal/storage"
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Нарезать сырые выгрузки на куски по командам",
	Long: `Обходит Splitter.RootDir, в каждом файле ищет самый длинный повтор
разделителя и сохраняет куски в Splitter.OutputDir/<папка>_clean/<имя>_clean_partN.log.
Все параметры задаются в config.yaml.`,
	Args: cobra.NoArgs,
	RunE: runSplit,
}

func init() {
	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, _ []string) error {
	cfg, rootLogger, ctx, cancel, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cancel()
	lg := rootLogger.Named("splitter")
	defer rootLogger.Sync()

	store, err := storage.New(cfg)
	if err != nil {
		lg.Error("Хранилище обработанных файлов недоступно, обрабатываем все файлы", zap.Error(err))
		store = nil
	}

	s, err := splitter.New(splitter.Config{
		RootDir:         cfg.Splitter.RootDir,
		OutputDir:       cfg.Splitter.OutputDir,
		ExcludedFolders: cfg.Splitter.ExcludedFolders,
		Separators:      cfg.Splitter.Separators,
		LineBreakToken:  cfg.Splitter.LineBreakToken,
		Logger:          lg,
		Store:           store,
	})
	if err != nil {
		return err
	}

	lg.Info("Нарезка стартует", zap.String("root", cfg.Splitter.RootDir), zap.String("output", cfg.Splitter.OutputDir))
	st, err := s.Run(ctx)
	if err != nil {
		return err
	}
	lg.Info("Нарезка завершена",
		zap.Int("files", st.Files),
		zap.Int("chunks", st.Chunks),
		zap.Int("no_separator", st.NoSeparator),
		zap.Int("unchanged", st.Unchanged),
		zap.Int("failed", st.Failed))
	return nil
}
