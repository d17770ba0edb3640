package quarry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/quarrydocs/quarry/pkg/core"
	"github.com/quarrydocs/quarry/pkg/corpus"
	"github.com/quarrydocs/quarry/pkg/crossref"
	"github.com/quarrydocs/quarry/pkg/orchestrator"
	"github.com/quarrydocs/quarry/pkg/retrieve"
	"github.com/quarrydocs/quarry/pkg/taxonomy"
	"github.com/quarrydocs/quarry/pkg/update"
	"github.com/quarrydocs/quarry/pkg/validate"
)

// Manager is the public entry point. It owns the corpus, the worker
// pipelines and the orchestrator that routes requests between them.
type Manager struct {
	root    string
	corpus  *corpus.Corpus
	orch    *orchestrator.Orchestrator
	logger  *slog.Logger
	gitless bool
}

// New creates a manager over the corpus rooted at path. The directory must
// already exist; nothing is created implicitly.
func New(path string, opts ...Option) (*Manager, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	root, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("corpus root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus root %s is not a directory", root)
	}

	c := corpus.New(root, logger)
	if o.categories != nil {
		c.Categories = o.categories
	}
	if o.ignore != nil {
		c.Ignore = o.ignore
	}

	workers := o.workers
	if workers == nil {
		tm := taxonomy.New(c, logger)
		if o.taxonomyFile != "" {
			tm = tm.WithTaxonomyFile(o.taxonomyFile)
		}
		workers = &orchestrator.Workers{
			Retriever: retrieve.New(c, logger),
			Validator: validate.New(c, logger),
			Taxonomy:  tm,
			Updater:   update.New(root, o.gitless, o.pushRemote, logger),
			Crossref:  crossref.New(c, logger),
		}
	}

	m := &Manager{
		root:    root,
		corpus:  c,
		orch:    orchestrator.New(*workers, logger),
		logger:  logger,
		gitless: o.gitless,
	}
	logger.Debug("manager initialized", "root", root, "gitless", o.gitless)
	return m, nil
}

// Root returns the absolute corpus root.
func (m *Manager) Root() string {
	return m.root
}

// Execute runs one request under a freshly minted run id.
func (m *Manager) Execute(ctx context.Context, req core.Request) (*core.Response, error) {
	return m.ExecuteWithRunID(ctx, req, NewRunID())
}

// ExecuteWithRunID runs one request under a caller-supplied run id, for
// callers that correlate runs externally (webhooks, batch jobs).
func (m *Manager) ExecuteWithRunID(ctx context.Context, req core.Request, runID string) (*core.Response, error) {
	return m.orch.Run(ctx, req, core.NewRunContext(runID))
}

// NewRunID mints a sortable, collision-resistant run identifier.
func NewRunID() string {
	return fmt.Sprintf("run-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
