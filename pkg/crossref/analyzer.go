// Package crossref builds the directed link graph of the corpus and derives
// orphan and cycle reports from it. The graph is rebuilt from scratch on
// every call; nothing is cached between analyses.
package crossref

import (
	"context"
	"log/slog"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/quarrydocs/quarry/pkg/core"
	"github.com/quarrydocs/quarry/pkg/corpus"
)

// Inline Markdown links: [text](target).
var linkPattern = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// Analyzer implements core.CrossrefAnalyzer.
type Analyzer struct {
	corpus *corpus.Corpus
	logger *slog.Logger
}

// New creates an analyzer over the given corpus.
func New(c *corpus.Corpus, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{corpus: c, logger: logger}
}

// Analyze walks every Markdown file under the root and reports the reference
// graph, orphans, and cycles.
func (a *Analyzer) Analyze(ctx context.Context) (*core.CrossrefReport, error) {
	graph, err := a.buildGraph(ctx)
	if err != nil {
		return nil, err
	}

	orphans := detectOrphans(graph)
	cycles := detectCycles(graph)

	emitted := make(map[string][]string, len(graph))
	totalRefs := 0
	for file, refs := range graph {
		sorted := make([]string, 0, len(refs))
		for ref := range refs {
			sorted = append(sorted, ref)
		}
		sort.Strings(sorted)
		emitted[file] = sorted
		totalRefs += len(refs)
	}

	a.logger.Debug("crossref analysis complete",
		"total_files", len(graph),
		"orphans", len(orphans),
		"cycles", len(cycles),
	)

	return &core.CrossrefReport{
		ReferenceGraph: emitted,
		Orphans:        orphans,
		Cycles:         cycles,
		Statistics: core.GraphStats{
			TotalFiles:      len(graph),
			TotalReferences: totalRefs,
			OrphanCount:     len(orphans),
		},
	}, nil
}

// buildGraph makes every walked file a node, even with zero outgoing
// references. Edge targets are not required to exist as nodes.
func (a *Analyzer) buildGraph(ctx context.Context) (map[string]map[string]struct{}, error) {
	graph := make(map[string]map[string]struct{})

	err := a.corpus.WalkMarkdown(nil, func(rel string, content []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		graph[rel] = extractReferences(string(content), rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return graph, nil
}

// extractReferences resolves link targets to repository-relative paths.
// External URLs are dropped, root-relative targets resolve against the
// repository root, relative targets against the source file's directory, and
// fragments are stripped after normalization. Only Markdown targets count.
func extractReferences(content, sourceRel string) map[string]struct{} {
	refs := make(map[string]struct{})

	for _, match := range linkPattern.FindAllStringSubmatch(content, -1) {
		target := match[2]
		if strings.HasPrefix(target, "http") {
			continue
		}

		var resolved string
		if strings.HasPrefix(target, "/") {
			resolved = path.Clean(strings.TrimLeft(target, "/"))
		} else {
			resolved = path.Clean(path.Join(path.Dir(sourceRel), target))
		}

		resolved, _, _ = strings.Cut(resolved, "#")
		if strings.HasSuffix(resolved, ".md") {
			refs[resolved] = struct{}{}
		}
	}

	return refs
}

// detectOrphans returns the nodes never used as an edge target, in
// lexicographic order. README files are entry points by convention and are
// exempt.
func detectOrphans(graph map[string]map[string]struct{}) []string {
	referenced := make(map[string]struct{})
	for _, refs := range graph {
		for ref := range refs {
			referenced[ref] = struct{}{}
		}
	}

	orphans := []string{}
	for file := range graph {
		if _, ok := referenced[file]; ok {
			continue
		}
		if strings.HasSuffix(file, "README.md") {
			continue
		}
		orphans = append(orphans, file)
	}
	sort.Strings(orphans)
	return orphans
}

// detectCycles runs a DFS from every unvisited node. The current path is
// copied at each descent while the on-stack set is shared, so a cycle
// reachable through several entry nodes may be reported more than once;
// downstream consumers rely on the first report's starting node, which the
// sorted traversal order keeps stable.
func detectCycles(graph map[string]map[string]struct{}) [][]string {
	cycles := [][]string{}
	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	var dfs func(node string, trail []string)
	dfs = func(node string, trail []string) {
		visited[node] = true
		onStack[node] = true
		trail = append(trail, node)

		for _, neighbor := range sortedKeys(graph[node]) {
			if !visited[neighbor] {
				next := make([]string, len(trail))
				copy(next, trail)
				dfs(neighbor, next)
			} else if onStack[neighbor] {
				if start := indexOf(trail, neighbor); start >= 0 {
					cycle := make([]string, 0, len(trail)-start+1)
					cycle = append(cycle, trail[start:]...)
					cycle = append(cycle, neighbor)
					cycles = append(cycles, cycle)
				}
			}
		}

		onStack[node] = false
	}

	for _, node := range sortedNodes(graph) {
		if !visited[node] {
			dfs(node, nil)
		}
	}

	return cycles
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedNodes(graph map[string]map[string]struct{}) []string {
	keys := make([]string, 0, len(graph))
	for k := range graph {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func indexOf(trail []string, node string) int {
	for i, n := range trail {
		if n == node {
			return i
		}
	}
	return -1
}
