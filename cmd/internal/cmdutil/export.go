package cmdutil

import (
	"context"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/zdqhub/zdq/exportstore"
	"github.com/zdqhub/zdq/report"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

type exportConfig struct {
	outDir    string
	s3Bucket  string
	gcsBucket string
	prefix    string
	enhanced  bool
	junit     bool
}

var exportCfg = exportConfig{}

func RegisterExportFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&exportCfg.outDir,
		"out-dir",
		"",
		"if set, directory to write the report CSV to",
	)
	cmd.PersistentFlags().StringVar(
		&exportCfg.s3Bucket,
		"s3-bucket",
		"",
		"if set, s3 bucket to upload the report CSV to",
	)
	cmd.PersistentFlags().StringVar(
		&exportCfg.gcsBucket,
		"gcs-bucket",
		"",
		"if set, gcs bucket to upload the report CSV to",
	)
	cmd.PersistentFlags().StringVar(
		&exportCfg.prefix,
		"export-prefix",
		"",
		"key prefix for exported files",
	)
	cmd.PersistentFlags().BoolVar(
		&exportCfg.enhanced,
		"enhanced",
		false,
		"whether to add a status column with a glyph to tabular output",
	)
	cmd.PersistentFlags().BoolVar(
		&exportCfg.junit,
		"junit",
		false,
		"whether to also export the report as JUnit XML",
	)
	cmd.MarkFlagsMutuallyExclusive("out-dir", "s3-bucket", "gcs-bucket")
}

func TableFormat() report.Format {
	if exportCfg.enhanced {
		return report.Enhanced
	}
	return report.Canonical
}

// ExportStore returns the configured export destination, or nil if the report
// is only printed.
func ExportStore(ctx context.Context, logger zerolog.Logger) (exportstore.Store, error) {
	switch {
	case exportCfg.gcsBucket != "":
		creds, err := google.FindDefaultCredentials(ctx, storage.ScopeReadWrite)
		if err != nil {
			return nil, errors.Wrap(err, "error finding gcp credentials")
		}
		client, err := storage.NewClient(ctx, option.WithCredentials(creds))
		if err != nil {
			return nil, errors.Wrap(err, "error creating gcs client")
		}
		return exportstore.NewGCPStore(logger, client, exportCfg.gcsBucket), nil
	case exportCfg.s3Bucket != "":
		sess, err := session.NewSession()
		if err != nil {
			return nil, errors.Wrap(err, "error creating aws session")
		}
		return exportstore.NewS3Store(logger, sess, exportCfg.s3Bucket), nil
	case exportCfg.outDir != "":
		return exportstore.NewLocalStore(logger, exportCfg.outDir)
	}
	return nil, nil
}

// Export writes rep to the configured destination, logging each location.
func Export(ctx context.Context, logger zerolog.Logger, rep report.Report) error {
	store, err := ExportStore(ctx, logger)
	if err != nil || store == nil {
		return err
	}
	resources, err := exportstore.Export(ctx, store, exportCfg.prefix, rep, exportstore.Format{
		Table: TableFormat(),
		JUnit: exportCfg.junit,
	})
	for _, res := range resources {
		if res != nil {
			logger.Info().Str("location", res.Location()).Msgf("exported report")
		}
	}
	return err
}
