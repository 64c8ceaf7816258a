package cmdutil

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zdqhub/zdq/config"
)

const envPrefix = "ZDQ"

var configFile string

// RegisterConfigFlags registers --config and the settings that may also be
// given in the config file or as ZDQ_* environment variables. Flags win over
// the environment, which wins over the file.
func RegisterConfigFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	cmd.PersistentFlags().StringVar(
		&configFile,
		"config",
		"",
		"config file (default is ./zdq.yaml if present)",
	)
	cmd.PersistentFlags().Int(
		"queries-per-second",
		def.QueriesPerSecond,
		"if set, the maximum number of warehouse queries issued per second",
	)
	cmd.PersistentFlags().Duration(
		"cache-ttl",
		def.CacheTTL,
		"how long catalog lookups are cached for; 0 disables caching",
	)
	cmd.PersistentFlags().Int(
		"query-attempts",
		def.QueryRetry.MaxRetries,
		"how many times a failing warehouse query is attempted",
	)
	for key, flag := range map[string]string{
		"queries_per_second":      "queries-per-second",
		"cache_ttl":               "cache-ttl",
		"query_retry.max_retries": "query-attempts",
	} {
		if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

// LoadConfig loads .env into the process environment, then layers the
// config file, ZDQ_* variables and flags over config.DefaultConfig.
func LoadConfig() (config.Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return config.Config{}, errors.Wrap(err, "error loading .env")
	}

	v := viper.GetViper()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return config.Config{}, errors.Wrapf(err, "error reading config file %s", configFile)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("zdq")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return config.Config{}, errors.Wrap(err, "error reading zdq.yaml")
			}
		}
	}
	return configFromViper(v)
}

func setDefaults(v *viper.Viper) {
	def := config.DefaultConfig()
	v.SetDefault("warehouse_db_type", def.WarehouseDBType)
	v.SetDefault("masked_suffix", def.MaskedSuffix)
	v.SetDefault("encrypted_suffix", def.EncryptedSuffix)
	v.SetDefault("cache_ttl", def.CacheTTL)
	v.SetDefault("queries_per_second", def.QueriesPerSecond)
	v.SetDefault("query_retry.initial_backoff", def.QueryRetry.InitialBackoff)
	v.SetDefault("query_retry.multiplier", def.QueryRetry.Multiplier)
	v.SetDefault("query_retry.max_backoff", def.QueryRetry.MaxBackoff)
	v.SetDefault("query_retry.max_retries", def.QueryRetry.MaxRetries)
	for _, env := range config.Environments {
		key := strings.ToLower(string(env))
		v.SetDefault("control_databases."+key, def.ControlDatabases[env])
		v.SetDefault("data_lake_databases."+key, def.DataLakeDatabases[env])
	}
}

func configFromViper(v *viper.Viper) (config.Config, error) {
	cfg := config.DefaultConfig()
	for _, env := range config.Environments {
		key := strings.ToLower(string(env))
		cfg.ControlDatabases[env] = v.GetString("control_databases." + key)
		cfg.DataLakeDatabases[env] = v.GetString("data_lake_databases." + key)
	}
	cfg.WarehouseDBType = v.GetString("warehouse_db_type")
	cfg.MaskedSuffix = v.GetString("masked_suffix")
	cfg.EncryptedSuffix = v.GetString("encrypted_suffix")
	cfg.CacheTTL = v.GetDuration("cache_ttl")
	cfg.QueriesPerSecond = v.GetInt("queries_per_second")
	cfg.QueryRetry.InitialBackoff = v.GetDuration("query_retry.initial_backoff")
	cfg.QueryRetry.Multiplier = v.GetInt("query_retry.multiplier")
	cfg.QueryRetry.MaxBackoff = v.GetDuration("query_retry.max_backoff")
	cfg.QueryRetry.MaxRetries = v.GetInt("query_retry.max_retries")
	if err := cfg.Validate(); err != nil {
		return config.Config{}, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}
