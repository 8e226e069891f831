package cmd

import (
	"fmt"
	"os"

	"douban2feishu/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "douban2feishu",
	Short: "Douban to Feishu Bitable sync service",
	Long: `douban2feishu synchronizes Douban media records (books, movies, tv,
documentaries) into Feishu Bitable tables with incremental change detection.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format matches CLI expectations; debug level selects the
		// development config with ISO8601 timestamps.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
