// Package update applies sandboxed mutations to the corpus and records them
// as git commits on a dedicated branch.
package update

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/quarrydocs/quarry/pkg/core"
	"github.com/quarrydocs/quarry/pkg/git"
	"github.com/quarrydocs/quarry/pkg/sandbox"
)

const (
	// TempFilePrefix is the prefix used for temporary atomic write files.
	TempFilePrefix = "quarry-tmp-"
	// BranchPrefix heads every generated update branch.
	BranchPrefix = "ssot-update-"

	defaultFileMode = 0644
	defaultDirMode  = 0755
)

// Updater implements core.Updater.
type Updater struct {
	root       string
	git        *git.Client
	gitless    bool
	pushRemote string
	logger     *slog.Logger
}

// New creates an updater rooted at the given corpus directory. With gitless
// set, mutations land on disk without version control.
func New(root string, gitless bool, pushRemote string, logger *slog.Logger) *Updater {
	if logger == nil {
		logger = slog.Default()
	}
	u := &Updater{root: root, gitless: gitless, pushRemote: pushRemote, logger: logger}
	if !gitless {
		u.git = git.NewClient(root, logger)
	}
	return u
}

// Apply performs one mutation. The target path is resolved through the
// sandbox before anything touches disk.
func (u *Updater) Apply(ctx context.Context, payload core.UpdatePayload, runID string) (*core.UpdateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel, abs, err := sandbox.ResolveFile(u.root, payload.TargetFile)
	if err != nil {
		return nil, err
	}

	if u.gitless {
		return u.applyGitless(payload, rel, abs)
	}
	return u.applyGit(payload, rel, abs, runID)
}

func (u *Updater) applyGitless(payload core.UpdatePayload, rel, abs string) (*core.UpdateResult, error) {
	if err := u.mutate(payload, rel, abs, false); err != nil {
		return nil, err
	}
	u.logger.Info("update applied without version control", "operation", payload.Operation, "file", rel)
	return &core.UpdateResult{FilesModified: []string{rel}}, nil
}

func (u *Updater) applyGit(payload core.UpdatePayload, rel, abs, runID string) (*core.UpdateResult, error) {
	if !git.IsInstalled() {
		return nil, fmt.Errorf("git binary not found; install git or enable gitless mode")
	}
	if !u.git.IsRepo() {
		return nil, fmt.Errorf("%s is not a git repository; run git init or enable gitless mode", u.root)
	}

	unlock, err := u.git.Lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	branch := payload.Branch
	if branch == "" {
		branch = BranchPrefix + git.SanitizeRef(runID)
	}
	if err := u.git.CheckoutNew(branch); err != nil {
		return nil, err
	}

	if err := u.mutate(payload, rel, abs, true); err != nil {
		return nil, err
	}

	if payload.Operation != core.OpDelete {
		if err := u.git.Add(rel); err != nil {
			return nil, err
		}
	}

	status, err := u.git.Status()
	if err != nil {
		return nil, err
	}
	if status == "" {
		return nil, fmt.Errorf("no changes to commit for %s", rel)
	}

	subject := payload.Reason
	if subject == "" {
		subject = fmt.Sprintf("%s %s", payload.Operation, rel)
	}
	msg := git.FormatCommitMessage(git.CommitTypeDocs, scopeOf(rel), subject, "run: "+runID)
	if err := u.git.Commit(msg); err != nil {
		return nil, err
	}

	sha, err := u.git.RevParse("HEAD")
	if err != nil {
		return nil, err
	}

	result := &core.UpdateResult{
		FilesModified: []string{rel},
		CommitSHA:     sha,
		Branch:        branch,
	}

	if u.pushRemote != "" {
		if err := u.git.Push(u.pushRemote, branch); err != nil {
			return nil, err
		}
		result.PRURL = compareURL(u.git.RemoteURL(u.pushRemote), branch)
	}

	u.logger.Info("update committed",
		"operation", payload.Operation,
		"file", rel,
		"branch", branch,
		"commit_sha", sha,
	)
	return result, nil
}

// mutate performs the disk-level change for one operation.
func (u *Updater) mutate(payload core.UpdatePayload, rel, abs string, tracked bool) error {
	switch payload.Operation {
	case core.OpAdd, core.OpUpdate:
		if err := os.MkdirAll(filepath.Dir(abs), defaultDirMode); err != nil {
			return err
		}
		return writeFileAtomic(abs, []byte(payload.Content), defaultFileMode)

	case core.OpDelete:
		if _, err := os.Stat(abs); err != nil {
			return fmt.Errorf("cannot delete %s: %w", rel, err)
		}
		if tracked {
			return u.git.Rm(rel)
		}
		return os.Remove(abs)

	default:
		return fmt.Errorf("%w: %q", core.ErrUnknownOperation, payload.Operation)
	}
}

func scopeOf(rel string) string {
	if i := strings.IndexByte(rel, '/'); i > 0 {
		return rel[:i]
	}
	return ""
}

// compareURL derives a GitHub compare link from the remote URL, or "" when
// the remote is not recognizably GitHub.
func compareURL(remote, branch string) string {
	remote = strings.TrimSuffix(remote, ".git")
	switch {
	case strings.HasPrefix(remote, "git@github.com:"):
		remote = "https://github.com/" + strings.TrimPrefix(remote, "git@github.com:")
	case strings.HasPrefix(remote, "https://github.com/"):
	default:
		return ""
	}
	return remote + "/compare/" + branch + "?expand=1"
}

// writeFileAtomic writes data to a file atomically by writing to a temp file
// and then renaming it to the target filename.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)

	// Create a temporary file in the same directory to ensure atomic rename
	tmpFile, err := os.CreateTemp(dir, TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name()) // Clean up if we fail before rename

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpFile.Name(), perm); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), filename); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", filename, err)
	}

	return nil
}
