package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/khanhnv2901/secheaders/internal/scoring"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AppContext carries process-wide dependencies built once in PersistentPreRunE.
type AppContext struct {
	Logger  *zap.SugaredLogger
	Catalog scoring.Catalog
	Config  *CLIConfig
}

type appContextKey struct{}

var (
	cfgFile     string
	catalogFile string
	verbose     bool

	globalAppContext *AppContext
)

var rootCmd = &cobra.Command{
	Use:           "secheaders",
	Short:         "Score a site's HTTP security headers",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appCtx := getAppContext(cmd); appCtx != nil && appCtx.Logger != nil {
			_ = appCtx.Logger.Sync()
		}
	},
}

func rootPersistentPreRunE(cmd *cobra.Command, args []string) error {
	// .env first so viper's AutomaticEnv sees it
	loadDotEnv()

	if err := initConfig(); err != nil {
		return err
	}
	applyConfigDefaults()

	logger, err := newLogger(verbose, logLevelFor(cmd))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	catalog, err := loadCatalog(catalogFile)
	if err != nil {
		return err
	}

	appCtx := &AppContext{
		Logger:  logger.Sugar(),
		Catalog: catalog,
		Config:  cliConfig,
	}
	storeAppContext(cmd, appCtx)

	appCtx.Logger.Debugw("configuration loaded",
		"config_file", viper.ConfigFileUsed(),
		"catalog_entries", catalog.Len(),
		"max_score", catalog.MaxScore(),
	)
	return nil
}

func loadDotEnv() {
	// Try .env.development first (local development), then .env
	if err := godotenv.Load(".env.development"); err != nil {
		_ = godotenv.Load()
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("$HOME")
		viper.AddConfigPath(".")
		viper.SetConfigName(".secheaders")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SECHEADERS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// a missing default config is fine; an explicit one must load
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}
	return nil
}

// logLevelAnnotation lets a command raise its non-verbose log level, e.g. serve
// keeps its access logs at info.
const logLevelAnnotation = "log_level"

// logLevelFor returns the non-verbose level for cmd. Reports stay readable by
// default: per-target logs need --verbose.
func logLevelFor(cmd *cobra.Command) zapcore.Level {
	if cmd != nil {
		if name, ok := cmd.Annotations[logLevelAnnotation]; ok {
			if level, err := zapcore.ParseLevel(name); err == nil {
				return level
			}
		}
	}
	return zap.WarnLevel
}

func newLogger(debug bool, level zapcore.Level) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// loadCatalog returns the built-in catalog or the YAML catalog at path.
// Catalog errors are fatal: scoring cannot proceed without a valid catalog.
func loadCatalog(path string) (scoring.Catalog, error) {
	if path == "" {
		return scoring.DefaultCatalog(), nil
	}
	catalog, err := scoring.LoadCatalogFile(path)
	if err != nil {
		return scoring.Catalog{}, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return catalog, nil
}

func storeAppContext(cmd *cobra.Command, appCtx *AppContext) {
	globalAppContext = appCtx
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, appContextKey{}, appCtx))
}

func getAppContext(cmd *cobra.Command) *AppContext {
	if cmd != nil && cmd.Context() != nil {
		if appCtx, ok := cmd.Context().Value(appContextKey{}).(*AppContext); ok {
			return appCtx
		}
	}
	return globalAppContext
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, colorError("Error:"), err)
		os.Exit(exitCode(err))
	}
}

func init() {
	// assigned here rather than in the rootCmd literal to avoid an
	// initialization cycle through applyConfigDefaults
	rootCmd.PersistentPreRunE = rootPersistentPreRunE

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.secheaders.yaml)")
	rootCmd.PersistentFlags().StringVar(&catalogFile, "catalog", "", "YAML header catalog (default is the built-in catalog)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
