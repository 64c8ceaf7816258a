package dbconn

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	sf "github.com/snowflakedb/gosnowflake"
)

// SnowflakeConfigFromEnv builds a driver config from SNOWFLAKE_* variables.
// USER, ACCOUNT and WAREHOUSE are required, as is PASSWORD unless an
// authenticator that does not use one is selected.
func SnowflakeConfigFromEnv(getenv func(string) string) (*sf.Config, error) {
	get := func(key string) string {
		return strings.TrimSpace(getenv("SNOWFLAKE_" + key))
	}
	cfg := &sf.Config{
		User:      get("USER"),
		Password:  get("PASSWORD"),
		Account:   get("ACCOUNT"),
		Warehouse: get("WAREHOUSE"),
		Role:      get("ROLE"),
		Database:  get("DATABASE"),
	}
	for _, required := range []struct {
		key   string
		value string
	}{
		{"USER", cfg.User},
		{"ACCOUNT", cfg.Account},
		{"WAREHOUSE", cfg.Warehouse},
	} {
		if required.value == "" {
			return nil, errors.Newf("SNOWFLAKE_%s environment variable is required", required.key)
		}
	}

	auth, err := snowflakeAuthenticator(get("AUTHENTICATOR"))
	if err != nil {
		return nil, err
	}
	cfg.Authenticator = auth
	if cfg.Password == "" && auth == sf.AuthTypeSnowflake {
		return nil, errors.New("SNOWFLAKE_PASSWORD environment variable is required")
	}

	if s := get("QUERY_TIMEOUT_SECONDS"); s != "" {
		secs, err := strconv.Atoi(s)
		if err != nil || secs < 0 {
			return nil, errors.Newf("SNOWFLAKE_QUERY_TIMEOUT_SECONDS must be a non-negative integer, got %q", s)
		}
		WithStatementTimeout(cfg, time.Duration(secs)*time.Second)
	}
	return cfg, nil
}

func snowflakeAuthenticator(s string) (sf.AuthType, error) {
	switch strings.ToLower(s) {
	case "", "snowflake":
		return sf.AuthTypeSnowflake, nil
	case "oauth":
		return sf.AuthTypeOAuth, nil
	case "externalbrowser":
		return sf.AuthTypeExternalBrowser, nil
	case "username_password_mfa":
		return sf.AuthTypeUsernamePasswordMFA, nil
	case "jwt":
		return sf.AuthTypeJwt, nil
	case "okta":
		return sf.AuthTypeOkta, nil
	}
	return sf.AuthTypeSnowflake, errors.Newf("unknown snowflake authenticator %q", s)
}
