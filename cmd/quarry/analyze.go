package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quarrydocs/quarry/pkg/core"
)

var (
	analyzeType string
	analyzeJSON bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze the corpus reference graph and vocabulary",
	Long:  `Build the cross-reference graph, detect orphans and cycles, and report controlled vocabulary usage.`,
	Run: func(cmd *cobra.Command, args []string) {
		m := newManager()

		resp, err := m.Execute(context.Background(), core.Request{
			RequestType:  core.RequestAnalyze,
			AnalysisType: analyzeType,
		})
		if err != nil {
			fatal("Error executing analysis", err)
		}

		if analyzeJSON {
			printJSON(resp)
			return
		}

		report := resp.AnalysisReport
		fmt.Printf("Analysis: %s\n", report.Type)
		if len(report.Recommendations) == 0 {
			fmt.Println("No recommendations.")
			return
		}
		for _, rec := range report.Recommendations {
			fmt.Printf("  - %s\n", rec)
		}
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeType, "type", "full", "Analysis type: crossref, taxonomy, orphans or full")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Output in JSON format")
}
