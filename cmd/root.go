package cmd

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"oreoffice-backend/config"
	"oreoffice-backend/routes"
	"oreoffice-backend/utils"
)

var (
	verbose bool
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "oreoffice",
	Short:         "OREOffice coworking back-office API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		zap.ReplaceGlobals(logger)

		if !verbose {
			gin.SetMode(gin.ReleaseMode)
		}
		decimal.MarshalJSONWithoutQuotes = true
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, billingCmd, settlementCmd)
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// bootstrap loads config and opens the database, migrating it first.
func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := config.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connect failed: %w", err)
	}
	if err := config.Migrate(db); err != nil {
		return nil, nil, fmt.Errorf("migration failed: %w", err)
	}
	return cfg, db, nil
}

func newServices(cfg *config.Config, db *gorm.DB) *routes.Services {
	return routes.NewServices(db, cfg, utils.NewSMTPMailer(cfg.SMTP))
}
