package validate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/quarrydocs/quarry/pkg/core"
	"github.com/quarrydocs/quarry/pkg/corpus"
	"github.com/quarrydocs/quarry/pkg/sandbox"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func newValidator(t *testing.T, root string) *Validator {
	t.Helper()
	return New(corpus.New(root, nil), nil)
}

func TestValidate_ContentMode(t *testing.T) {
	v := newValidator(t, t.TempDir())

	t.Run("Deep Heading Is An Error", func(t *testing.T) {
		report, err := v.Validate(context.Background(), core.ValidationRequest{
			Content: "######## Way Too Deep\n",
		})
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if report.Passed {
			t.Error("expected validation to fail")
		}
		if len(report.Errors) != 1 {
			t.Fatalf("errors = %v, want one", report.Errors)
		}
		if report.Errors[0].Message != "Heading level too deep: 8" {
			t.Errorf("message = %q", report.Errors[0].Message)
		}
		if report.Errors[0].File != "inline" {
			t.Errorf("file = %q, want inline", report.Errors[0].File)
		}
		if report.TotalFiles != 1 {
			t.Errorf("total_files = %d, want 1", report.TotalFiles)
		}
	})

	t.Run("Trailing Whitespace Is A Warning", func(t *testing.T) {
		report, err := v.Validate(context.Background(), core.ValidationRequest{
			Content: "# Fine\nsome text \n",
		})
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if !report.Passed {
			t.Error("warnings alone must not fail validation")
		}
		if len(report.Warnings) != 1 || report.Warnings[0].Line != 2 {
			t.Errorf("warnings = %v", report.Warnings)
		}
	})

	t.Run("Relative Link Is Flagged For Review", func(t *testing.T) {
		report, err := v.Validate(context.Background(), core.ValidationRequest{
			Content:    "[up](../other.md)\n",
			TargetFile: "docs/a.md",
		})
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if len(report.Warnings) != 1 {
			t.Fatalf("warnings = %v, want one", report.Warnings)
		}
		if report.Warnings[0].Severity != "info" {
			t.Errorf("severity = %q", report.Warnings[0].Severity)
		}
		if report.Warnings[0].File != "docs/a.md" {
			t.Errorf("file = %q", report.Warnings[0].File)
		}
	})
}

func TestValidate_CategoryScope(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "files/bad.md", "######## Eight Levels\n")
	writeFile(t, root, "engineering/ok.md", "# Clean\n")

	v := newValidator(t, root)

	report, err := v.Validate(context.Background(), core.ValidationRequest{
		Scope:    ScopeCategory,
		Category: "files",
	})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if report.Passed {
		t.Error("expected failure for files/bad.md")
	}
	if len(report.Errors) != 1 {
		t.Fatalf("errors = %v, want one", report.Errors)
	}
	if report.Errors[0].File != "files/bad.md" {
		t.Errorf("error file = %q, want files/bad.md", report.Errors[0].File)
	}
	if report.TotalFiles != 1 {
		t.Errorf("total_files = %d, want 1", report.TotalFiles)
	}
}

func TestValidate_AllScope(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "files/a.md", "# OK\n")
	writeFile(t, root, "engineering/b.md", "# OK\n")
	writeFile(t, root, "unscoped/c.md", "######## Deep\n")

	v := newValidator(t, root)

	report, err := v.Validate(context.Background(), core.ValidationRequest{Scope: ScopeAll})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	// unscoped/ is outside the category set and must not be walked.
	if !report.Passed {
		t.Errorf("errors = %v, want none", report.Errors)
	}
	if report.TotalFiles != 2 {
		t.Errorf("total_files = %d, want 2", report.TotalFiles)
	}
}

func TestValidate_FileScope(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "files/doc.md", "trailing \n")

	v := newValidator(t, root)

	t.Run("Lints Target", func(t *testing.T) {
		report, err := v.Validate(context.Background(), core.ValidationRequest{
			Scope:      ScopeFile,
			TargetFile: "files/doc.md",
		})
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if !report.Passed || len(report.Warnings) != 1 {
			t.Errorf("report = %+v", report)
		}
	})

	t.Run("Rejects Escaping Target", func(t *testing.T) {
		_, err := v.Validate(context.Background(), core.ValidationRequest{
			Scope:      ScopeFile,
			TargetFile: "../outside.md",
		})
		if !errors.Is(err, sandbox.ErrInvalidPath) {
			t.Errorf("err = %v, want ErrInvalidPath", err)
		}
	})

	t.Run("Requires Target", func(t *testing.T) {
		if _, err := v.Validate(context.Background(), core.ValidationRequest{Scope: ScopeFile}); err == nil {
			t.Error("expected error for missing target_file")
		}
	})
}

func TestValidate_EmptyScopeDefaultsToAll(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "files/bad.md", "######## Deep\n")

	v := newValidator(t, root)

	// A zero-value request (no content, no scope) must walk the whole
	// repository, not validate nothing.
	report, err := v.Validate(context.Background(), core.ValidationRequest{})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if report.Passed {
		t.Error("expected failure for files/bad.md")
	}
	if report.TotalFiles != 1 {
		t.Errorf("total_files = %d, want 1", report.TotalFiles)
	}
}

func TestValidate_Deterministic(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "files/a.md", "######## Deep\ntext \n")

	v := newValidator(t, root)
	req := core.ValidationRequest{Scope: ScopeCategory, Category: "files"}

	first, err := v.Validate(context.Background(), req)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	second, err := v.Validate(context.Background(), req)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if len(first.Errors) != len(second.Errors) || len(first.Warnings) != len(second.Warnings) {
		t.Errorf("runs differ: %+v vs %+v", first, second)
	}
}
