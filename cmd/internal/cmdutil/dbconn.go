package cmdutil

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/zdqhub/zdq/config"
	"github.com/zdqhub/zdq/dbconn"
)

type warehouseConfig struct {
	url              string
	statementTimeout time.Duration
}

var warehouseCfg = warehouseConfig{}

func RegisterWarehouseFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&warehouseCfg.url,
		"warehouse",
		"",
		"URL of the warehouse (snowflake://... or postgres://...); defaults to the SNOWFLAKE_* environment",
	)
	cmd.PersistentFlags().DurationVar(
		&warehouseCfg.statementTimeout,
		"statement-timeout",
		0,
		"if set, the statement timeout for snowflake sessions configured from SNOWFLAKE_* variables",
	)
}

// LoadWarehouse connects to the warehouse and wraps the connection with the
// configured rate limit and retry policy. Failure here halts the command.
func LoadWarehouse(ctx context.Context, logger zerolog.Logger, cfg config.Config) (dbconn.Conn, error) {
	var conn dbconn.Conn
	var err error
	if warehouseCfg.url != "" {
		conn, err = dbconn.Connect(ctx, "warehouse", warehouseCfg.url)
	} else {
		sfCfg, cfgErr := dbconn.SnowflakeConfigFromEnv(os.Getenv)
		if cfgErr != nil {
			return nil, cfgErr
		}
		if warehouseCfg.statementTimeout > 0 {
			dbconn.WithStatementTimeout(sfCfg, warehouseCfg.statementTimeout)
		}
		conn, err = dbconn.ConnectSnowflake(ctx, "warehouse", sfCfg)
	}
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Str("dialect", conn.Dialect().Name()).
		Int("queries_per_second", cfg.QueriesPerSecond).
		Msgf("connected to warehouse")
	return dbconn.NewLimitedConn(conn, cfg.QueriesPerSecond, cfg.QueryRetry, logger), nil
}
