package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	quarry "github.com/quarrydocs/quarry"
)

var (
	verbose    bool
	corpusRoot string
	gitless    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quarry",
	Short: "A single-source-of-truth manager for Markdown documentation corpora",
	Long: `Quarry treats a directory of Markdown files as a single source of truth.
It answers questions against the corpus, lints it, analyzes its reference
graph and vocabulary, and applies validated updates as Git commits.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&corpusRoot, "root", ".", "Corpus root directory")
	rootCmd.PersistentFlags().BoolVar(&gitless, "gitless", false, "Apply updates without version control")
}

func newManager() *quarry.Manager {
	m, err := quarry.New(corpusRoot, quarry.WithGitless(gitless))
	if err != nil {
		fatal("Error initializing manager", err)
	}
	return m
}
