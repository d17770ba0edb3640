package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quarrydocs/quarry/pkg/core"
)

var (
	validateScope    string
	validateCategory string
	validateTarget   string
	validateJSON     bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Lint the corpus",
	Long:  `Validate Markdown files in the selected scope and print the findings. Exits non-zero when errors are found.`,
	Run: func(cmd *cobra.Command, args []string) {
		m := newManager()

		resp, err := m.Execute(context.Background(), core.Request{
			RequestType: core.RequestValidate,
			Scope:       validateScope,
			Category:    validateCategory,
			TargetFile:  validateTarget,
		})
		if err != nil {
			fatal("Error executing validation", err)
		}

		if validateJSON {
			printJSON(resp)
		} else {
			report := resp.ValidationReport
			for _, issue := range report.Errors {
				fmt.Printf("%s:%d: error: %s\n", issue.File, issue.Line, issue.Message)
			}
			for _, issue := range report.Warnings {
				fmt.Printf("%s:%d: %s: %s\n", issue.File, issue.Line, issue.Severity, issue.Message)
			}
			fmt.Printf("%d files checked, %d errors, %d warnings\n",
				report.TotalFiles, len(report.Errors), len(report.Warnings))
		}

		if resp.Status == core.StatusFailure {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&validateScope, "scope", "all", "Validation scope: all, category or file")
	validateCmd.Flags().StringVar(&validateCategory, "category", "", "Category to validate (scope=category)")
	validateCmd.Flags().StringVar(&validateTarget, "target", "", "File to validate (scope=file)")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output in JSON format")
}
