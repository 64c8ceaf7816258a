package cmdutil

import (
	"github.com/spf13/cobra"
	"github.com/zdqhub/zdq/config"
	"github.com/zdqhub/zdq/validate"
)

// ClassificationFlags select the schema and classification owner for masking
// and encryption commands.
type ClassificationFlags struct {
	env      string
	database string
	schema   string
	owner    string
}

func (f *ClassificationFlags) Register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&f.env, "env", "", "environment: DEV, QA, UAT or PROD")
	cmd.PersistentFlags().StringVar(&f.database, "database", "", "database whose classified objects are checked")
	cmd.PersistentFlags().StringVar(&f.schema, "schema", "", "schema whose classified objects are checked")
	cmd.PersistentFlags().StringVar(&f.owner, "owner", "", "classification owner")
}

// Params parses the environment. Other missing values are left for the run
// function to reject.
func (f *ClassificationFlags) Params() (validate.ClassificationParams, error) {
	if f.env == "" {
		return validate.ClassificationParams{}, &validate.MissingParameterError{Param: "environment"}
	}
	env, err := config.ParseEnvironment(f.env)
	if err != nil {
		return validate.ClassificationParams{}, err
	}
	return validate.ClassificationParams{
		Env:      env,
		Database: f.database,
		Schema:   f.schema,
		Owner:    f.owner,
	}, nil
}
