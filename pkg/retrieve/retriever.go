// Package retrieve answers questions over the corpus with keyword-overlap
// ranking. Scoring is deterministic: no randomness and no wall-clock input.
package retrieve

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/quarrydocs/quarry/pkg/core"
	"github.com/quarrydocs/quarry/pkg/corpus"
)

const (
	// maxSources caps how many ranked hits back an answer.
	maxSources = 5
	// snippetLen bounds the content excerpt carried per source.
	snippetLen = 500
	// minRelevance is the inclusion threshold for a source.
	minRelevance = 0.1
)

// Retriever implements core.Retriever.
type Retriever struct {
	corpus *corpus.Corpus
	logger *slog.Logger
}

// New creates a retriever over the given corpus.
func New(c *corpus.Corpus, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{corpus: c, logger: logger}
}

// Retrieve searches the corpus and synthesizes an answer from the top hit.
// Absence of sources is a valid answer, never an error.
func (r *Retriever) Retrieve(ctx context.Context, q core.QueryPayload) (*core.Answer, error) {
	keywords := buildKeywords(q.Topic, q.Question)

	sources, err := r.search(ctx, q.Category, keywords)
	if err != nil {
		return nil, err
	}

	answer := &core.Answer{
		Question: q.Question,
		Sources:  sources,
	}

	if len(sources) == 0 {
		answer.Answer = "No relevant information found."
		return answer, nil
	}

	top := sources[0]
	answer.Answer = fmt.Sprintf("Relevant information found in %s, %s section.\n\n%s",
		top.File, top.Section, top.Content)
	answer.Confidence = min(top.Relevance, 1.0)

	r.logger.Debug("answer generated", "source_file", top.File, "confidence", answer.Confidence)
	return answer, nil
}

func buildKeywords(topic, question string) []string {
	var keywords []string
	if topic != "" {
		keywords = append(keywords, strings.ToLower(topic))
	}
	keywords = append(keywords, strings.Fields(strings.ToLower(question))...)
	return keywords
}

func (r *Retriever) search(ctx context.Context, category string, keywords []string) ([]core.Source, error) {
	dirs, err := r.corpus.SearchDirs(category)
	if err != nil {
		return nil, err
	}

	var sources []core.Source
	err = r.corpus.WalkMarkdown(dirs, func(rel string, content []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		text := string(content)
		relevance := scoreRelevance(text, keywords)
		if relevance <= minRelevance {
			return nil
		}

		sources = append(sources, core.Source{
			File:      rel,
			Section:   relevantSection(text, keywords),
			Content:   snippet(text),
			Relevance: relevance,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Stable sort keeps walk order among equally relevant files.
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Relevance > sources[j].Relevance
	})
	if len(sources) > maxSources {
		sources = sources[:maxSources]
	}

	r.logger.Debug("search complete", "total_sources", len(sources))
	return sources, nil
}

// scoreRelevance is the fraction of keywords present in the content.
func scoreRelevance(content string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	lower := strings.ToLower(content)
	matches := 0
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			matches++
		}
	}
	return float64(matches) / float64(len(keywords))
}

// relevantSection returns the nearest heading at or above the first line
// containing a keyword.
func relevantSection(content string, keywords []string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lower := strings.ToLower(line)
		hit := false
		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		for j := i; j >= 0; j-- {
			if strings.HasPrefix(lines[j], "#") {
				return strings.TrimSpace(lines[j])
			}
		}
		break
	}
	return "Introduction"
}

func snippet(content string) string {
	if len(content) > snippetLen {
		return content[:snippetLen]
	}
	return content
}
