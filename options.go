package quarry

import (
	"log/slog"

	"github.com/quarrydocs/quarry/pkg/orchestrator"
)

// options holds the internal configuration for the manager.
type options struct {
	logger       *slog.Logger
	gitless      bool
	categories   []string
	ignore       []string
	taxonomyFile string
	pushRemote   string
	workers      *orchestrator.Workers
}

// Option defines a functional option for configuring the manager.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		logger:  nil, // or slog.Default() if we prefer
		gitless: false,
	}
}

// WithLogger sets the logger for the manager and its workers.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithGitless disables version control: updates land on disk without
// branches or commits.
func WithGitless(gitless bool) Option {
	return func(o *options) {
		o.gitless = gitless
	}
}

// WithCategories overrides the default top-level category directories.
func WithCategories(categories ...string) Option {
	return func(o *options) {
		o.categories = categories
	}
}

// WithIgnore overrides the default ignore globs.
func WithIgnore(globs ...string) Option {
	return func(o *options) {
		o.ignore = globs
	}
}

// WithTaxonomyFile overrides the controlled vocabulary location, relative to
// the corpus root.
func WithTaxonomyFile(rel string) Option {
	return func(o *options) {
		o.taxonomyFile = rel
	}
}

// WithPushRemote makes the update pipeline push its branch to the named
// remote and derive a pull request URL from it.
func WithPushRemote(remote string) Option {
	return func(o *options) {
		o.pushRemote = remote
	}
}

// WithWorkers allows injecting custom worker implementations (e.g. mocks).
// If provided, the default pipelines are skipped.
func WithWorkers(workers orchestrator.Workers) Option {
	return func(o *options) {
		o.workers = &workers
	}
}
