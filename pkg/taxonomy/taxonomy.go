// Package taxonomy manages the corpus's controlled vocabulary, loaded fresh
// from the authoritative taxonomy document on every call.
package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/quarrydocs/quarry/pkg/core"
	"github.com/quarrydocs/quarry/pkg/corpus"
)

// DefaultTaxonomyFile is the authoritative vocabulary document, relative to
// the corpus root.
const DefaultTaxonomyFile = "_meta/TAXONOMY.md"

const maxSuggestions = 3

var (
	bulletTerm  = regexp.MustCompile(`^-\s+\*\*([^*]+)\*\*:`)
	headingTerm = regexp.MustCompile(`^###\s+(.+)$`)
	whitespace  = regexp.MustCompile(`\s+`)
	hasLetter   = regexp.MustCompile(`[a-z]`)
)

// Manager implements core.TaxonomyManager.
type Manager struct {
	corpus       *corpus.Corpus
	taxonomyFile string
	logger       *slog.Logger
}

// New creates a manager over the given corpus, reading terms from the
// default taxonomy file.
func New(c *corpus.Corpus, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{corpus: c, taxonomyFile: DefaultTaxonomyFile, logger: logger}
}

// WithTaxonomyFile overrides the vocabulary document location.
func (m *Manager) WithTaxonomyFile(rel string) *Manager {
	m.taxonomyFile = rel
	return m
}

// CheckTerms validates the frontmatter tags of the given content against the
// controlled vocabulary. Unknown terms are issues, not errors.
func (m *Manager) CheckTerms(ctx context.Context, content string) (*core.TaxonomyCheck, error) {
	terms, err := m.loadTerms()
	if err != nil {
		return nil, err
	}

	check := &core.TaxonomyCheck{
		Operation: "validate",
		Issues:    []core.TermIssue{},
	}

	for _, candidate := range extractCandidates(content) {
		if _, ok := terms[candidate]; ok {
			continue
		}
		check.Issues = append(check.Issues, core.TermIssue{
			Term:        candidate,
			Message:     fmt.Sprintf("'%s' not in controlled vocabulary", candidate),
			Suggestions: similarTerms(candidate, terms),
		})
	}

	check.Passed = len(check.Issues) == 0
	m.logger.Debug("taxonomy check complete", "issues", len(check.Issues))
	return check, nil
}

// AnalyzeUsage counts occurrences of every controlled term across the corpus
// and derives maintenance recommendations.
func (m *Manager) AnalyzeUsage(ctx context.Context) (*core.TaxonomyAnalysis, error) {
	terms, err := m.loadTerms()
	if err != nil {
		return nil, err
	}

	usage := make(map[string]int, len(terms))
	for term := range terms {
		usage[term] = 0
	}

	err = m.corpus.WalkMarkdown(nil, func(rel string, content []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		lower := strings.ToLower(string(content))
		for term := range terms {
			usage[term] += strings.Count(lower, term)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Debug("usage analyzed", "total_terms", len(usage))
	return &core.TaxonomyAnalysis{
		Operation:       "analyze",
		TermUsage:       usage,
		Recommendations: recommendations(usage),
	}, nil
}

// loadTerms reads the controlled vocabulary. A missing taxonomy document is
// a soft condition: it logs a warning and yields an empty set.
func (m *Manager) loadTerms() (map[string]struct{}, error) {
	path := filepath.Join(m.corpus.Root, filepath.FromSlash(m.taxonomyFile))

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			m.logger.Warn("taxonomy document not found", "path", m.taxonomyFile)
			return map[string]struct{}{}, nil
		}
		return nil, err
	}

	terms := make(map[string]struct{})
	for _, line := range strings.Split(string(content), "\n") {
		if match := bulletTerm.FindStringSubmatch(line); match != nil {
			terms[strings.ToLower(strings.TrimSpace(match[1]))] = struct{}{}
			continue
		}
		if match := headingTerm.FindStringSubmatch(strings.TrimSpace(line)); match != nil {
			term := whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(match[1])), "-")
			if hasLetter.MatchString(term) {
				terms[term] = struct{}{}
			}
		}
	}

	m.logger.Debug("taxonomy loaded", "term_count", len(terms))
	return terms, nil
}

// extractCandidates pulls frontmatter tags as vocabulary candidates.
// Documents without frontmatter have nothing to check.
func extractCandidates(content string) []string {
	meta, _, err := corpus.SplitFrontmatter([]byte(content))
	if err != nil || meta == nil {
		return nil
	}
	return corpus.Tags(meta)
}

// similarTerms suggests controlled terms sharing the candidate's three-rune
// prefix, in lexicographic order.
func similarTerms(candidate string, terms map[string]struct{}) []string {
	prefix := candidate
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}

	similar := []string{}
	for term := range terms {
		if strings.HasPrefix(term, prefix) {
			similar = append(similar, term)
		}
	}
	sort.Strings(similar)
	if len(similar) > maxSuggestions {
		similar = similar[:maxSuggestions]
	}
	return similar
}

func recommendations(usage map[string]int) []string {
	var recs []string

	unused := []string{}
	for term, count := range usage {
		if count == 0 {
			unused = append(unused, term)
		}
	}
	sort.Strings(unused)
	if len(unused) > 0 {
		sample := unused
		if len(sample) > 5 {
			sample = sample[:5]
		}
		recs = append(recs, fmt.Sprintf("%d unused terms: %s", len(unused), strings.Join(sample, ", ")))
	}

	frequent := topTerms(usage, 5)
	parts := make([]string, 0, len(frequent))
	for _, tc := range frequent {
		parts = append(parts, fmt.Sprintf("%s(%d)", tc.Term, tc.Count))
	}
	recs = append(recs, "Frequent terms: "+strings.Join(parts, ", "))

	return recs
}

// topTerms ranks terms by descending count, ties broken lexicographically.
func topTerms(usage map[string]int, n int) []core.TermCount {
	ranked := make([]core.TermCount, 0, len(usage))
	for term, count := range usage {
		ranked = append(ranked, core.TermCount{Term: term, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Term < ranked[j].Term
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// TopTerms exposes the deterministic ranking for the analyze pipeline's
// findings.
func TopTerms(usage map[string]int, n int) []core.TermCount {
	return topTerms(usage, n)
}

// UnusedTerms returns never-used terms in lexicographic order, capped at n.
func UnusedTerms(usage map[string]int, n int) []string {
	unused := []string{}
	for term, count := range usage {
		if count == 0 {
			unused = append(unused, term)
		}
	}
	sort.Strings(unused)
	if len(unused) > n {
		unused = unused[:n]
	}
	return unused
}
