// Package config holds the fixed lookup tables and knobs a validation run
// depends on.
package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/zdqhub/zdq/retry"
)

type Environment string

const (
	DEV  Environment = "DEV"
	QA   Environment = "QA"
	UAT  Environment = "UAT"
	PROD Environment = "PROD"
)

// Environments lists the supported environments in display order.
var Environments = []Environment{DEV, QA, UAT, PROD}

var ErrUnknownEnvironment = errors.New("unknown environment")

func ParseEnvironment(s string) (Environment, error) {
	e := Environment(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Environments {
		if e == known {
			return e, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownEnvironment, "%q (expected one of DEV, QA, UAT, PROD)", s)
}

func (e Environment) String() string {
	return string(e)
}

const (
	DefaultWarehouseDBType = "SNOWFLAKE"
	DefaultMaskedSuffix    = "_MASKED"
	DefaultEncryptedSuffix = "_ENCRYPT"
	DefaultCacheTTL        = 300 * time.Second
)

type Config struct {
	// ControlDatabases maps an environment to the database holding the
	// audit_recon control catalog.
	ControlDatabases map[Environment]string
	// DataLakeDatabases maps an environment to the database holding the raw
	// views that ingested tables are compared against.
	DataLakeDatabases map[Environment]string

	// WarehouseDBType is the db_type tag the control catalog uses for the
	// warehouse's own loaded copy of a table.
	WarehouseDBType string
	MaskedSuffix    string
	EncryptedSuffix string

	CacheTTL         time.Duration
	QueryRetry       retry.Settings
	QueriesPerSecond int
}

func DefaultConfig() Config {
	return Config{
		ControlDatabases: map[Environment]string{
			DEV:  "dev_db_manager",
			QA:   "qa_db_manager",
			UAT:  "uat_db_manager",
			PROD: "prod_db_manager",
		},
		DataLakeDatabases: map[Environment]string{
			DEV:  "dev_datalake",
			QA:   "qa_datalake",
			UAT:  "uat_datalake",
			PROD: "prod_datalake",
		},
		WarehouseDBType: DefaultWarehouseDBType,
		MaskedSuffix:    DefaultMaskedSuffix,
		EncryptedSuffix: DefaultEncryptedSuffix,
		CacheTTL:        DefaultCacheTTL,
		QueryRetry: retry.Settings{
			InitialBackoff: 500 * time.Millisecond,
			Multiplier:     2,
			MaxBackoff:     5 * time.Second,
			MaxRetries:     1,
		},
	}
}

// Validate checks every supported environment has an entry in both maps.
func (c Config) Validate() error {
	for _, env := range Environments {
		if c.ControlDatabases[env] == "" {
			return errors.Wrapf(ErrUnknownEnvironment, "no control database configured for %s", env)
		}
		if c.DataLakeDatabases[env] == "" {
			return errors.Wrapf(ErrUnknownEnvironment, "no data lake database configured for %s", env)
		}
	}
	if c.WarehouseDBType == "" {
		return errors.Newf("warehouse db type must be set")
	}
	if c.MaskedSuffix == "" || c.EncryptedSuffix == "" {
		return errors.Newf("masked and encrypted suffixes must be set")
	}
	if c.CacheTTL < 0 {
		return errors.Newf("cache ttl must be >= 0, got %s", c.CacheTTL)
	}
	if c.QueriesPerSecond < 0 {
		return errors.Newf("queries per second must be >= 0, got %d", c.QueriesPerSecond)
	}
	if c.QueryRetry.MaxRetries < 1 {
		return errors.Newf("query retry attempts must be >= 1, got %d", c.QueryRetry.MaxRetries)
	}
	return c.QueryRetry.Verify()
}

func (c Config) ControlDatabase(env Environment) (string, error) {
	db, ok := c.ControlDatabases[env]
	if !ok || db == "" {
		return "", errors.Wrapf(ErrUnknownEnvironment, "no control database configured for %q", env)
	}
	return db, nil
}

func (c Config) DataLakeDatabase(env Environment) (string, error) {
	db, ok := c.DataLakeDatabases[env]
	if !ok || db == "" {
		return "", errors.Wrapf(ErrUnknownEnvironment, "no data lake database configured for %q", env)
	}
	return db, nil
}

// ClassificationDatabase is the per-environment database manager holding the
// MASKING and ACCOUNT_USAGE metadata schemas.
func (c Config) ClassificationDatabase(env Environment) string {
	return string(env) + "_DB_MANAGER"
}

func (c Config) MaskedDatabase(db string) string {
	return db + c.MaskedSuffix
}

func (c Config) EncryptedDatabase(db string) string {
	return db + c.EncryptedSuffix
}

// ProductionDatabase rewrites any non-production environment prefix in db to
// PROD_. The classification catalog only knows production names.
func ProductionDatabase(db string) string {
	for _, env := range []Environment{DEV, QA, UAT} {
		db = strings.ReplaceAll(db, string(env)+"_", string(PROD)+"_")
	}
	return db
}
