package commands

import (
	"fmt"

	"rtm-portal/internal/config"
	"rtm-portal/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	loadConfig = config.Load
	newLogger  = logger.New
)

// setup loads configuration from the --env-file flag and builds a console
// logger for command output.
func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		envFile = config.DefaultEnvFile
	}
	cfg, err := loadConfig(envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := newLogger(cfg.Logging.Level, "console", "rtmctl")
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}
