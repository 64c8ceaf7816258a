package config

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestParseEnvironment(t *testing.T) {
	for _, tc := range []struct {
		in       string
		expected Environment
		err      bool
	}{
		{in: "DEV", expected: DEV},
		{in: "qa", expected: QA},
		{in: " uat ", expected: UAT},
		{in: "PROD", expected: PROD},
		{in: "STAGING", err: true},
		{in: "", err: true},
	} {
		t.Run(tc.in, func(t *testing.T) {
			env, err := ParseEnvironment(tc.in)
			if tc.err {
				require.Error(t, err)
				require.True(t, errors.Is(err, ErrUnknownEnvironment))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, env)
		})
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	for _, tc := range []struct {
		desc          string
		mutate        func(c *Config)
		expectedError string
	}{
		{
			desc: "missing control database",
			mutate: func(c *Config) {
				delete(c.ControlDatabases, UAT)
			},
			expectedError: "no control database configured for UAT: unknown environment",
		},
		{
			desc: "missing data lake database",
			mutate: func(c *Config) {
				c.DataLakeDatabases[PROD] = ""
			},
			expectedError: "no data lake database configured for PROD: unknown environment",
		},
		{
			desc: "no retry attempts",
			mutate: func(c *Config) {
				c.QueryRetry.MaxRetries = 0
			},
			expectedError: "query retry attempts must be >= 1, got 0",
		},
		{
			desc: "negative rate",
			mutate: func(c *Config) {
				c.QueriesPerSecond = -1
			},
			expectedError: "queries per second must be >= 0, got -1",
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			c := DefaultConfig()
			tc.mutate(&c)
			require.EqualError(t, c.Validate(), tc.expectedError)
		})
	}
}

func TestLookups(t *testing.T) {
	c := DefaultConfig()

	db, err := c.ControlDatabase(QA)
	require.NoError(t, err)
	require.Equal(t, "qa_db_manager", db)

	db, err = c.DataLakeDatabase(PROD)
	require.NoError(t, err)
	require.Equal(t, "prod_datalake", db)

	_, err = c.ControlDatabase(Environment("SANDBOX"))
	require.True(t, errors.Is(err, ErrUnknownEnvironment))

	require.Equal(t, "DEV_DB_MANAGER", c.ClassificationDatabase(DEV))
	require.Equal(t, "DEV_SALES_MASKED", c.MaskedDatabase("DEV_SALES"))
	require.Equal(t, "DEV_SALES_ENCRYPT", c.EncryptedDatabase("DEV_SALES"))
}

func TestProductionDatabase(t *testing.T) {
	for _, tc := range []struct {
		in       string
		expected string
	}{
		{in: "DEV_SALES", expected: "PROD_SALES"},
		{in: "QA_SALES", expected: "PROD_SALES"},
		{in: "UAT_SALES", expected: "PROD_SALES"},
		{in: "PROD_SALES", expected: "PROD_SALES"},
		{in: "SALES", expected: "SALES"},
		{in: "EDW_DEV_SALES", expected: "EDW_PROD_SALES"},
	} {
		t.Run(tc.in, func(t *testing.T) {
			require.Equal(t, tc.expected, ProductionDatabase(tc.in))
		})
	}
}
