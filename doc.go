// Package quarry is the Composition Root for the Quarry application.
//
// It manages a directory of Markdown documents as a single source of truth
// (SSOT), wiring the worker pipelines to the orchestrator that routes
// requests between them.
//
// Philosophy:
//
// Quarry treats documentation as data. Every request runs through a typed
// pipeline with deterministic results: the same corpus and the same request
// always produce the same report. Mutations are sandboxed to the corpus root
// and recorded as Conventional Commits on a dedicated branch.
//
// Features:
//
//   - **Four pipelines**: query, update, validate and analyze, behind one request envelope.
//   - **Path sandbox**: no operation can read or write outside the corpus root.
//   - **Reference graph**: orphan and cycle detection over Markdown links.
//   - **Controlled vocabulary**: frontmatter tags checked against a taxonomy document.
//   - **Git-backed updates**: validated changes land as commits on an update branch.
//
// Usage:
//
//	// Initialize the manager with functional options
//	m, err := quarry.New("./docs",
//		quarry.WithLogger(logger),
//	)
//
//	// Run a request
//	resp, err := m.Execute(ctx, core.Request{
//		RequestType: core.RequestQuery,
//		Query:       &core.QueryPayload{Question: "how do deployments work?"},
//	})
package quarry
