package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/zdqhub/zdq/catalog"
	"github.com/zdqhub/zdq/cmd/internal/cmdutil"
	"github.com/zdqhub/zdq/config"
)

func Command() *cobra.Command {
	var envName string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List databases, schemas and catalog values used to select what to validate.",
	}
	cmd.PersistentFlags().StringVar(&envName, "env", "", "environment: DEV, QA, UAT or PROD")

	var excludeCounterparts bool
	databases := &cobra.Command{
		Use:   "databases",
		Short: "List databases belonging to the environment.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return list(cmd, func(ctx context.Context, c *catalog.Catalog) ([]string, error) {
				env, err := parseEnv(envName)
				if err != nil {
					return nil, err
				}
				return c.ListDatabases(ctx, env, catalog.DatabaseFilter{ExcludeCounterparts: excludeCounterparts}), nil
			})
		},
	}
	databases.Flags().BoolVar(
		&excludeCounterparts,
		"exclude-counterparts",
		false,
		"omit masked and encrypted databases",
	)

	var database string
	schemas := &cobra.Command{
		Use:   "schemas",
		Short: "List schemas in a database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return list(cmd, func(ctx context.Context, c *catalog.Catalog) ([]string, error) {
				if database == "" {
					return nil, errors.New("--database must be set")
				}
				return c.ListSchemas(ctx, database), nil
			})
		},
	}
	schemas.Flags().StringVar(&database, "database", "", "database to list schemas of")

	var column string
	values := &cobra.Command{
		Use:   "values",
		Short: "List distinct values of a control catalog column.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return list(cmd, func(ctx context.Context, c *catalog.Catalog) ([]string, error) {
				env, err := parseEnv(envName)
				if err != nil {
					return nil, err
				}
				column := strings.ToUpper(column)
				switch column {
				case catalog.ColumnDBType, catalog.ColumnLoadGroup, catalog.ColumnLoadType, catalog.ColumnClassificationOwner:
				default:
					return nil, errors.Newf(
						"unknown column %q, expected one of %s, %s, %s or %s",
						column,
						catalog.ColumnDBType,
						catalog.ColumnLoadGroup,
						catalog.ColumnLoadType,
						catalog.ColumnClassificationOwner,
					)
				}
				return c.ListDistinct(ctx, env, column), nil
			})
		},
	}
	values.Flags().StringVar(&column, "column", catalog.ColumnLoadGroup, "catalog column to list")

	cmd.AddCommand(databases, schemas, values)
	return cmd
}

func parseEnv(s string) (config.Environment, error) {
	if s == "" {
		return "", errors.New("--env must be set")
	}
	return config.ParseEnvironment(s)
}

func list(cmd *cobra.Command, fn func(ctx context.Context, c *catalog.Catalog) ([]string, error)) error {
	ctx := context.Background()
	e, err := cmdutil.Setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close(ctx)

	vals, err := fn(ctx, catalog.New(e.Conn, e.Config, e.Logger))
	if err != nil {
		return err
	}
	for _, v := range vals {
		fmt.Fprintln(cmd.OutOrStdout(), v)
	}
	return nil
}
