package dbconn

import (
	"testing"

	sf "github.com/snowflakedb/gosnowflake"
	"github.com/stretchr/testify/require"
)

func TestSnowflakeConfigFromEnv(t *testing.T) {
	base := map[string]string{
		"SNOWFLAKE_USER":      "svc_dq",
		"SNOWFLAKE_PASSWORD":  "hunter2",
		"SNOWFLAKE_ACCOUNT":   "acme-prod",
		"SNOWFLAKE_WAREHOUSE": "DQ_WH",
	}
	for _, tc := range []struct {
		desc          string
		env           map[string]string
		expectedError string
		check         func(t *testing.T, cfg *sf.Config)
	}{
		{
			desc: "minimal",
			env:  map[string]string{},
			check: func(t *testing.T, cfg *sf.Config) {
				require.Equal(t, "svc_dq", cfg.User)
				require.Equal(t, "acme-prod", cfg.Account)
				require.Equal(t, "DQ_WH", cfg.Warehouse)
				require.Equal(t, sf.AuthTypeSnowflake, cfg.Authenticator)
				require.Nil(t, cfg.Params)
			},
		},
		{
			desc: "timeout and role",
			env:  map[string]string{"SNOWFLAKE_QUERY_TIMEOUT_SECONDS": "120", "SNOWFLAKE_ROLE": "DQ_READER"},
			check: func(t *testing.T, cfg *sf.Config) {
				require.Equal(t, "DQ_READER", cfg.Role)
				require.Equal(t, "120", *cfg.Params["STATEMENT_TIMEOUT_IN_SECONDS"])
			},
		},
		{
			desc: "browser auth needs no password",
			env:  map[string]string{"SNOWFLAKE_PASSWORD": "", "SNOWFLAKE_AUTHENTICATOR": "externalbrowser"},
			check: func(t *testing.T, cfg *sf.Config) {
				require.Equal(t, sf.AuthTypeExternalBrowser, cfg.Authenticator)
			},
		},
		{
			desc:          "missing password",
			env:           map[string]string{"SNOWFLAKE_PASSWORD": ""},
			expectedError: "SNOWFLAKE_PASSWORD environment variable is required",
		},
		{
			desc:          "missing warehouse",
			env:           map[string]string{"SNOWFLAKE_WAREHOUSE": " "},
			expectedError: "SNOWFLAKE_WAREHOUSE environment variable is required",
		},
		{
			desc:          "unknown authenticator",
			env:           map[string]string{"SNOWFLAKE_AUTHENTICATOR": "kerberos"},
			expectedError: `unknown snowflake authenticator "kerberos"`,
		},
		{
			desc:          "bad timeout",
			env:           map[string]string{"SNOWFLAKE_QUERY_TIMEOUT_SECONDS": "soon"},
			expectedError: `SNOWFLAKE_QUERY_TIMEOUT_SECONDS must be a non-negative integer, got "soon"`,
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			env := map[string]string{}
			for k, v := range base {
				env[k] = v
			}
			for k, v := range tc.env {
				env[k] = v
			}
			cfg, err := SnowflakeConfigFromEnv(func(k string) string { return env[k] })
			if tc.expectedError != "" {
				require.EqualError(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}
