package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	grove "github.com/treegrove/grove"
	"github.com/treegrove/grove/descriptor"
	"github.com/treegrove/grove/i18n"
	"github.com/treegrove/grove/memstore"
)

var (
	validateSchemaPath string
	validateTreePath   string
	validateJSON       bool
)

var errValidationFailed = errors.New("validation failed")

func init() {
	validateCmd.Flags().StringVarP(&validateSchemaPath, "schema", "s", "", "layout schema file (YAML)")
	validateCmd.Flags().StringVarP(&validateTreePath, "tree", "t", "", "tree description file (YAML)")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "output the report as JSON")
	_ = validateCmd.MarkFlagRequired("schema")
	_ = validateCmd.MarkFlagRequired("tree")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a tree description against a layout schema",
	Long: `Validate a tree description file against a declarative layout schema.

Exit codes:
  0 - the tree conforms to the layout
  1 - validation failures, or the inputs could not be read`,
	Example: `  # Validate a tree
  grove validate --schema layout.yaml --tree measurement.yaml

  # JSON output for CI/CD
  grove validate -s layout.yaml -t measurement.yaml --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runValidate(cmd.Context(), os.Stdout)
	},
}

func runValidate(ctx context.Context, w io.Writer) error {
	schemaData, err := os.ReadFile(validateSchemaPath)
	if err != nil {
		return errors.Wrap(err, "read schema")
	}
	layout, err := descriptor.ParseYAML(schemaData)
	if err != nil {
		return err
	}
	schema, err := layout.Schema()
	if err != nil {
		return err
	}

	treeData, err := os.ReadFile(validateTreePath)
	if err != nil {
		return errors.Wrap(err, "read tree")
	}
	store, err := memstore.FromYAML(treeData)
	if err != nil {
		return err
	}

	report, err := schema.Validate(ctx, store, store.Root())
	if err != nil {
		if se, ok := grove.AsStoreError(err); ok {
			return errors.Wrap(se, i18n.T("store_error", nil))
		}
		return err
	}

	if validateJSON {
		out, err := report.JSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(out))
	} else {
		renderHuman(w, report)
	}
	if report.Fails() > 0 {
		return errValidationFailed
	}
	return nil
}

func renderHuman(w io.Writer, report *grove.Report) {
	if report.Fails() == 0 {
		color.New(color.FgGreen, color.Bold).Fprintln(w, "✓ layout valid")
		return
	}
	color.New(color.FgRed, color.Bold).Fprintf(w, "✗ layout invalid: %d failing node(s)\n", report.Fails())
	for _, o := range report.Failures() {
		msg := i18n.T(o.Code, map[string]string{"expected": o.Detail})
		fmt.Fprintf(w, "  %s  %s  %s", color.RedString("FAIL"), o.Path, msg)
		if o.Hint != "" {
			fmt.Fprintf(w, " %s", color.YellowString(o.Hint))
		}
		fmt.Fprintln(w)
	}
}
