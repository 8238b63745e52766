package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/deskfolio/internal/infrastructure/config"
	"github.com/GriffinCanCode/deskfolio/internal/infrastructure/logging"
	"github.com/GriffinCanCode/deskfolio/internal/infrastructure/server"
)

type serveFlags struct {
	envFile    string
	port       string
	host       string
	catalogDir string
	owner      string
	logLevel   string
	dev        bool
}

func newServeCmd() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			if flags.envFile != "" {
				files = append(files, flags.envFile)
			}
			cfg, err := config.Load(files...)
			if err != nil {
				return err
			}
			flags.apply(cmd, cfg)

			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			srv, err := server.New(cfg, logger)
			if err != nil {
				return err
			}
			return srv.Serve(cmd.Context())
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.envFile, "env-file", "", "read environment from this file instead of .env")
	f.StringVarP(&flags.port, "port", "p", "", "server port (overrides PORT)")
	f.StringVar(&flags.host, "host", "", "bind address (overrides HOST)")
	f.StringVar(&flags.catalogDir, "catalog", "", "app catalog directory (overrides CATALOG_DIR)")
	f.StringVar(&flags.owner, "owner", "", "name shown by the terminal (overrides OWNER_NAME)")
	f.StringVar(&flags.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	f.BoolVar(&flags.dev, "dev", false, "development logging (overrides LOG_DEV)")

	return cmd
}

// apply copies flags the user set onto cfg
func (f serveFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("port") {
		cfg.Server.Port = f.port
	}
	if changed("host") {
		cfg.Server.Host = f.host
	}
	if changed("catalog") {
		cfg.Catalog.Dir = f.catalogDir
	}
	if changed("owner") {
		cfg.Catalog.Owner = f.owner
	}
	if changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if changed("dev") {
		cfg.Logging.Development = f.dev
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logCfg := logging.DefaultConfig()
	if cfg.Logging.Development {
		logCfg = logging.DevelopmentConfig()
	}
	if cfg.Logging.Level != "" {
		logCfg.Level = cfg.Logging.Level
	}
	return logging.New(logCfg)
}
