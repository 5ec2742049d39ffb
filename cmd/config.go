package cmd

import (
	"time"

	"github.com/khanhnv2901/secheaders/internal/shared/constants"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// CLIConfig captures runtime configuration shared across commands.
type CLIConfig struct {
	Defaults DefaultValues
	Analyze  AnalyzeRuntimeConfig
	Serve    ServeConfig
}

// DefaultValues represent operator-level defaults, typically derived from env/config.
type DefaultValues struct {
	TimeoutSecs  int
	DisplayLimit int
	CatalogFile  string
}

// AnalyzeRuntimeConfig consolidates flag-driven settings for the analyze command.
type AnalyzeRuntimeConfig struct {
	Concurrency     int
	RateLimit       int
	TimeoutSecs     int
	DisplayLimit    int
	JSONOutput      bool
	ProgressEnabled bool
}

// ServeConfig captures API server options.
type ServeConfig struct {
	Addr            string
	AuthToken       string
	CORSOrigins     []string
	RateLimit       int
	RateBurst       int
	ShutdownTimeout time.Duration
}

type defaultOverrides struct {
	TimeoutSecs  *int
	DisplayLimit *int
	Concurrency  *int
	RateLimit    *int
	CatalogFile  string
	AuthToken    string
}

var cliConfig = newCLIConfig()

func newCLIConfig() *CLIConfig {
	timeoutSecs := int(constants.DefaultTimeout / time.Second)
	return &CLIConfig{
		Defaults: DefaultValues{
			TimeoutSecs:  timeoutSecs,
			DisplayLimit: constants.DefaultDisplayLimit,
		},
		Analyze: AnalyzeRuntimeConfig{
			Concurrency:  constants.DefaultConcurrency,
			RateLimit:    constants.DefaultRateLimit,
			TimeoutSecs:  timeoutSecs,
			DisplayLimit: constants.DefaultDisplayLimit,
		},
		Serve: ServeConfig{
			Addr:            "127.0.0.1:8080",
			RateLimit:       2,
			RateBurst:       5,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

func loadDefaultOverrides() defaultOverrides {
	overrides := defaultOverrides{}

	if viper.IsSet("defaults.timeout_secs") {
		val := viper.GetInt("defaults.timeout_secs")
		overrides.TimeoutSecs = &val
	}

	if viper.IsSet("defaults.display_limit") {
		val := viper.GetInt("defaults.display_limit")
		overrides.DisplayLimit = &val
	}

	if viper.IsSet("defaults.concurrency") {
		val := viper.GetInt("defaults.concurrency")
		overrides.Concurrency = &val
	}

	if viper.IsSet("defaults.rate_limit") {
		val := viper.GetInt("defaults.rate_limit")
		overrides.RateLimit = &val
	}

	if viper.IsSet("catalog_file") {
		overrides.CatalogFile = viper.GetString("catalog_file")
	}

	if viper.IsSet("serve.auth_token") {
		overrides.AuthToken = viper.GetString("serve.auth_token")
	}

	return overrides
}

// applyConfigDefaults merges config file defaults into the runtime config when the user
// did not explicitly override the corresponding flag.
func applyConfigDefaults() {
	overrides := loadDefaultOverrides()

	if overrides.CatalogFile != "" {
		cliConfig.Defaults.CatalogFile = overrides.CatalogFile
		setStringFlagIfUnset(rootCmd.PersistentFlags(), "catalog", overrides.CatalogFile)
	}

	if overrides.TimeoutSecs != nil {
		applyIntDefault(analyzeCmd.Flags(), "timeout", *overrides.TimeoutSecs, func(v int) {
			cliConfig.Defaults.TimeoutSecs = v
			cliConfig.Analyze.TimeoutSecs = v
		})
	}

	if overrides.DisplayLimit != nil {
		applyIntDefault(analyzeCmd.Flags(), "display-limit", *overrides.DisplayLimit, func(v int) {
			cliConfig.Defaults.DisplayLimit = v
			cliConfig.Analyze.DisplayLimit = v
		})
	}

	if overrides.Concurrency != nil {
		applyIntDefault(analyzeCmd.Flags(), "concurrency", *overrides.Concurrency, func(v int) {
			cliConfig.Analyze.Concurrency = v
		})
	}

	if overrides.RateLimit != nil {
		applyIntDefault(analyzeCmd.Flags(), "rate-limit", *overrides.RateLimit, func(v int) {
			cliConfig.Analyze.RateLimit = v
		})
	}

	if overrides.AuthToken != "" {
		setStringFlagIfUnset(serveCmd.Flags(), "auth-token", overrides.AuthToken)
	}
}

func applyIntDefault(flags *pflag.FlagSet, name string, value int, setter func(int)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func setStringFlagIfUnset(flags *pflag.FlagSet, name, value string) {
	if flags == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag == nil || flag.Changed {
		return
	}
	_ = flag.Value.Set(value)
}
