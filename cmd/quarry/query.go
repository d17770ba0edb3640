package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quarrydocs/quarry/pkg/core"
)

var (
	queryCategory string
	queryTopic    string
	queryJSON     bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question against the corpus",
	Long:  `Search the corpus for the given question and print the synthesized answer with its sources.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m := newManager()

		resp, err := m.Execute(context.Background(), core.Request{
			RequestType: core.RequestQuery,
			Query: &core.QueryPayload{
				Category: queryCategory,
				Topic:    queryTopic,
				Question: args[0],
			},
		})
		if err != nil {
			fatal("Error executing query", err)
		}

		if queryJSON {
			printJSON(resp)
			return
		}

		fmt.Println(resp.Answer.Answer)
		if len(resp.Answer.Sources) > 0 {
			fmt.Println("\nSources:")
			for _, src := range resp.Answer.Sources {
				fmt.Printf("  %s (%s, relevance %.2f)\n", src.File, src.Section, src.Relevance)
			}
		}
	},
}

func printJSON(v any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		fatal("Error encoding JSON", err)
	}
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVar(&queryCategory, "category", "all", "Category to search in")
	queryCmd.Flags().StringVar(&queryTopic, "topic", "", "Topic hint for ranking")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "Output in JSON format")
}
