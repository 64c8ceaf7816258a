package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zdqhub/zdq/cmd/catalog"
	"github.com/zdqhub/zdq/cmd/encrypt"
	"github.com/zdqhub/zdq/cmd/ingest"
	"github.com/zdqhub/zdq/cmd/internal/cmdutil"
	"github.com/zdqhub/zdq/cmd/mask"
)

var rootCmd = &cobra.Command{
	Use:   "zdq",
	Short: "Data quality checks for warehouse ingestion, masking and encryption",
	Long: `zdq reconciles what the control catalog says was loaded against the warehouse,
and checks that masked and encrypted counterparts of classified schemas are complete.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cmdutil.RegisterValidationFlags(rootCmd)
	rootCmd.AddCommand(ingest.Command())
	rootCmd.AddCommand(mask.Command())
	rootCmd.AddCommand(encrypt.Command())
	rootCmd.AddCommand(catalog.Command())
}
