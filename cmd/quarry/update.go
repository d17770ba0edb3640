package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quarrydocs/quarry/pkg/core"
)

var (
	updateOp      string
	updateContent string
	updateFile    string
	updateReason  string
	updateBranch  string
	updateJSON    bool
)

var updateCmd = &cobra.Command{
	Use:   "update [target]",
	Short: "Apply a validated change to the corpus",
	Long: `Add, update or delete one document. Content is validated and checked
against the controlled vocabulary before anything is committed.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		content := updateContent
		if updateFile != "" {
			data, err := os.ReadFile(updateFile)
			if err != nil {
				fatal("Error reading content file", err)
			}
			content = string(data)
		}

		m := newManager()

		resp, err := m.Execute(context.Background(), core.Request{
			RequestType: core.RequestUpdate,
			Update: &core.UpdatePayload{
				Operation:  updateOp,
				TargetFile: args[0],
				Content:    content,
				Reason:     updateReason,
				Branch:     updateBranch,
			},
		})
		if err != nil {
			fatal("Error executing update", err)
		}

		if updateJSON {
			printJSON(resp)
		} else if resp.Status == core.StatusSuccess {
			result := resp.UpdateResult
			fmt.Printf("Updated %v\n", result.FilesModified)
			if result.CommitSHA != "" {
				fmt.Printf("Commit %s on %s\n", result.CommitSHA, result.Branch)
			}
			if result.PRURL != "" {
				fmt.Printf("Open a pull request: %s\n", result.PRURL)
			}
		} else {
			fmt.Println("Update rejected:")
			printJSON(resp.Data)
		}

		if resp.Status == core.StatusFailure {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().StringVar(&updateOp, "op", "update", "Operation: add, update or delete")
	updateCmd.Flags().StringVar(&updateContent, "content", "", "New content (inline)")
	updateCmd.Flags().StringVar(&updateFile, "content-file", "", "Read new content from a file")
	updateCmd.Flags().StringVar(&updateReason, "reason", "", "Reason recorded in the commit message")
	updateCmd.Flags().StringVar(&updateBranch, "branch", "", "Branch to commit on (default: generated)")
	updateCmd.Flags().BoolVar(&updateJSON, "json", false, "Output in JSON format")
}
