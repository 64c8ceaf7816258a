package validate

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/zdqhub/zdq/config"
	"github.com/zdqhub/zdq/dialect"
	"github.com/zdqhub/zdq/reconcile"
)

// MissingParameterError is returned before any query is issued when a
// required selection was not supplied.
type MissingParameterError struct {
	Param string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing required parameter: %s", e.Param)
}

// IsMissingParameter reports whether err was caused by a missing selection.
func IsMissingParameter(err error) bool {
	var m *MissingParameterError
	return errors.As(err, &m)
}

// IngestionParams select the control catalog entries a count run compares.
type IngestionParams struct {
	Env          config.Environment
	LoadGroup    string
	LoadType     string
	SourceDBType string
}

// TableParams select the loaded tables of one schema for row-diff and
// duplicate runs.
type TableParams struct {
	Env       config.Environment
	Database  string
	Schema    string
	LoadGroup string
	LoadType  string
}

// ClassificationParams select the classified objects of one schema for
// masking and encryption runs.
type ClassificationParams struct {
	Env      config.Environment
	Database string
	Schema   string
	Owner    string
}

type param struct {
	name  string
	value string
}

// checkParams reports the first empty parameter, in order.
func checkParams(params ...param) error {
	for _, p := range params {
		if p.value == "" {
			return &MissingParameterError{Param: p.name}
		}
	}
	return nil
}

func (p *IngestionParams) check(cfg config.Config) error {
	if err := checkParams(
		param{"environment", string(p.Env)},
		param{"load group", p.LoadGroup},
		param{"load type", p.LoadType},
		param{"source db type", p.SourceDBType},
	); err != nil {
		return err
	}
	if _, err := cfg.ControlDatabase(p.Env); err != nil {
		return err
	}
	lt, err := dialect.ValidateFreeText("load type", p.LoadType)
	if err != nil {
		return err
	}
	p.LoadType = lt
	return nil
}

func (p *TableParams) check(cfg config.Config) error {
	if err := checkParams(
		param{"environment", string(p.Env)},
		param{"database", p.Database},
		param{"schema", p.Schema},
		param{"load group", p.LoadGroup},
		param{"load type", p.LoadType},
	); err != nil {
		return err
	}
	if _, err := cfg.ControlDatabase(p.Env); err != nil {
		return err
	}
	if _, err := cfg.DataLakeDatabase(p.Env); err != nil {
		return err
	}
	if err := validateScope(p.Database, p.Schema); err != nil {
		return err
	}
	lt, err := dialect.ValidateFreeText("load type", p.LoadType)
	if err != nil {
		return err
	}
	p.LoadType = lt
	return nil
}

func (p TableParams) labels() reconcile.JobLabels {
	return reconcile.JobLabels{Env: string(p.Env), LoadGroup: p.LoadGroup, LoadType: p.LoadType}
}

func (p *ClassificationParams) check() error {
	if err := checkParams(
		param{"environment", string(p.Env)},
		param{"database", p.Database},
		param{"schema", p.Schema},
		param{"classification owner", p.Owner},
	); err != nil {
		return err
	}
	env, err := config.ParseEnvironment(string(p.Env))
	if err != nil {
		return err
	}
	p.Env = env
	return validateScope(p.Database, p.Schema)
}

func validateScope(database, schema string) error {
	if err := dialect.ValidateIdent("database", database); err != nil {
		return err
	}
	return dialect.ValidateIdent("schema", schema)
}
