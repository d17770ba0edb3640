package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	quarry "github.com/quarrydocs/quarry"
	"github.com/quarrydocs/quarry/pkg/core"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-validate the corpus whenever Markdown files change",
	Long: `Watch the corpus for Markdown changes and run a full validation after
each burst of edits. Results are logged; the command runs until interrupted.`,
	Run: func(cmd *cobra.Command, args []string) {
		m := newManager()

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			fatal("Error creating watcher", err)
		}
		defer watcher.Close()

		if err := addRecursive(watcher, m.Root()); err != nil {
			fatal("Error watching corpus", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		changed := make(chan struct{}, 1)

		// Debounced validation runner. Supervised so a panic in a worker
		// pipeline doesn't kill the watch loop silently.
		lifecycle.Go(ctx, func(ctx context.Context) error {
			var timer *time.Timer
			var fire <-chan time.Time
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-changed:
					if timer == nil {
						timer = time.NewTimer(watchDebounce)
					} else {
						timer.Reset(watchDebounce)
					}
					fire = timer.C
				case <-fire:
					fire = nil
					runValidation(ctx, m)
				}
			}
		}, lifecycle.WithErrorHandler(func(err error) {
			slog.Error("validation runner failed", "error", err)
		}))

		slog.Info("watching corpus", "root", m.Root())
		for {
			select {
			case <-ctx.Done():
				slog.Info("watch stopped")
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Create) {
					// New directories need their own watch.
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						_ = addRecursive(watcher, event.Name)
						continue
					}
				}
				if !strings.HasSuffix(event.Name, ".md") {
					continue
				}
				slog.Debug("change detected", "file", event.Name, "op", event.Op)
				select {
				case changed <- struct{}{}:
				default:
				}

			case wErr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Error("watcher error", "error", wErr)
			}
		}
	},
}

func runValidation(ctx context.Context, m *quarry.Manager) {
	resp, err := m.Execute(ctx, core.Request{
		RequestType: core.RequestValidate,
		Scope:       "all",
	})
	if err != nil {
		slog.Error("validation failed", "error", err)
		return
	}

	report := resp.ValidationReport
	if report.Passed {
		slog.Info("corpus valid", "total_files", report.TotalFiles, "warnings", len(report.Warnings))
		return
	}
	slog.Warn("corpus has errors", "errors", len(report.Errors), "warnings", len(report.Warnings))
	for _, issue := range report.Errors {
		fmt.Printf("%s:%d: error: %s\n", issue.File, issue.Line, issue.Message)
	}
}

// addRecursive watches dir and every subdirectory except VCS internals.
func addRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" || d.Name() == ".quarry" {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Delay before validating after a change")
}
