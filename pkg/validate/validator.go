// Package validate lints Markdown content and repository scopes.
package validate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/quarrydocs/quarry/pkg/core"
	"github.com/quarrydocs/quarry/pkg/corpus"
	"github.com/quarrydocs/quarry/pkg/sandbox"
)

// Validation scopes.
const (
	ScopeAll      = "all"
	ScopeCategory = "category"
	ScopeFile     = "file"
)

var headingPattern = regexp.MustCompile(`^#+`)

// Validator implements core.Validator.
type Validator struct {
	corpus *corpus.Corpus
	logger *slog.Logger
}

// New creates a validator over the given corpus.
func New(c *corpus.Corpus, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{corpus: c, logger: logger}
}

// Validate lints either inline content (when req.Content is non-empty) or
// the repository scope selected by req.Scope. Passed is true iff no errors
// were found; warnings alone never fail a validation.
func (v *Validator) Validate(ctx context.Context, req core.ValidationRequest) (*core.ValidationReport, error) {
	report := &core.ValidationReport{
		Errors:   []core.Issue{},
		Warnings: []core.Issue{},
	}

	if req.Content != "" {
		name := req.TargetFile
		if name == "" {
			name = "inline"
		}
		v.lintInto(report, name, req.Content)
		report.TotalFiles = 1
		report.Passed = len(report.Errors) == 0
		return report, nil
	}

	// The worker's contract is self-contained: an unset scope means the
	// whole repository, regardless of how the caller filled the request.
	if req.Scope == "" {
		req.Scope = ScopeAll
	}

	if err := v.validateRepository(ctx, req, report); err != nil {
		return nil, err
	}

	report.Passed = len(report.Errors) == 0
	v.logger.Debug("validation complete",
		"scope", req.Scope,
		"errors", len(report.Errors),
		"warnings", len(report.Warnings),
		"total_files", report.TotalFiles,
	)
	return report, nil
}

func (v *Validator) validateRepository(ctx context.Context, req core.ValidationRequest, report *core.ValidationReport) error {
	switch req.Scope {
	case ScopeFile:
		if req.TargetFile == "" {
			return fmt.Errorf("target_file is required when scope is %q", ScopeFile)
		}
		rel, abs, err := sandbox.ResolveFile(v.corpus.Root, req.TargetFile)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(abs)
		if err != nil {
			if os.IsNotExist(err) {
				// A missing target lints nothing, mirroring scope counts.
				return nil
			}
			return err
		}
		v.lintInto(report, rel, string(content))
		report.TotalFiles = 1
		return nil

	case ScopeCategory:
		if req.Category == "" || req.Category == "all" {
			return fmt.Errorf("category is required when scope is %q", ScopeCategory)
		}
		dirs, err := v.corpus.SearchDirs(req.Category)
		if err != nil {
			return err
		}
		return v.walkInto(ctx, dirs, report)

	case ScopeAll:
		return v.walkInto(ctx, v.corpus.Categories, report)

	default:
		// Unknown scopes validate nothing, successfully.
		return nil
	}
}

func (v *Validator) walkInto(ctx context.Context, dirs []string, report *core.ValidationReport) error {
	return v.corpus.WalkMarkdown(dirs, func(rel string, content []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		v.lintInto(report, rel, string(content))
		report.TotalFiles++
		return nil
	})
}

// lintInto applies the lint rules and link review to one document.
func (v *Validator) lintInto(report *core.ValidationReport, name, content string) {
	for i, line := range strings.Split(content, "\n") {
		lineNo := i + 1

		if strings.HasSuffix(line, " ") {
			report.Warnings = append(report.Warnings, core.Issue{
				File:     name,
				Line:     lineNo,
				Message:  "Trailing whitespace found",
				Severity: "warning",
			})
		}

		if strings.HasPrefix(line, "#") {
			if depth := len(headingPattern.FindString(line)); depth > 6 {
				report.Errors = append(report.Errors, core.Issue{
					File:     name,
					Line:     lineNo,
					Message:  fmt.Sprintf("Heading level too deep: %d", depth),
					Severity: "error",
				})
			}
		}
	}

	report.Warnings = append(report.Warnings, linkWarnings(name, content)...)
}

// linkWarnings flags relative links for manual review. Whether the target
// exists is the graph engine's concern, not the linter's.
func linkWarnings(name, content string) []core.Issue {
	var warnings []core.Issue
	for _, match := range linkPattern.FindAllStringSubmatch(content, -1) {
		target := match[2]
		if strings.HasPrefix(target, "./") || strings.HasPrefix(target, "../") {
			warnings = append(warnings, core.Issue{
				File:     name,
				Message:  fmt.Sprintf("Internal link '%s' needs verification", target),
				Severity: "info",
			})
		}
	}
	return warnings
}

var linkPattern = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
