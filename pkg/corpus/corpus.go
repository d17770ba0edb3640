// Package corpus provides read access to the SSOT repository: a
// deterministic Markdown walker with ignore patterns, category scoping, and
// frontmatter parsing shared by the workers.
package corpus

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/quarrydocs/quarry/pkg/sandbox"
)

// DefaultCategories are the top-level content directories of the corpus.
var DefaultCategories = []string{"files", "engineering", "tools", "platforms", "_meta"}

// DefaultIgnore keeps version-control and tooling directories out of every
// walk. Patterns are doublestar globs matched against slash-separated
// repository-relative paths.
var DefaultIgnore = []string{".git/**", ".quarry/**"}

// Corpus scopes all filesystem reads to one repository root.
type Corpus struct {
	Root       string
	Categories []string
	Ignore     []string
	Logger     *slog.Logger
}

// New creates a corpus over root with the default category set and ignore
// patterns.
func New(root string, logger *slog.Logger) *Corpus {
	return &Corpus{
		Root:       root,
		Categories: DefaultCategories,
		Ignore:     DefaultIgnore,
		Logger:     logger,
	}
}

// SearchDirs maps a category selector to the directories to walk. "all" (or
// empty) selects the whole category set; anything else must pass the
// sandbox's single-segment check.
func (c *Corpus) SearchDirs(category string) ([]string, error) {
	if category == "" || category == "all" {
		dirs := make([]string, len(c.Categories))
		copy(dirs, c.Categories)
		return dirs, nil
	}
	safe, err := sandbox.ResolveCategory(c.Root, category)
	if err != nil {
		return nil, err
	}
	return []string{safe}, nil
}

// WalkMarkdown visits every Markdown file under the given repository-relative
// directories, in lexical order, calling fn with the slash-separated relative
// path and file content. A nil or empty dirs walks the entire root.
// Directories that do not exist are skipped silently, matching the corpus
// convention that categories are optional.
func (c *Corpus) WalkMarkdown(dirs []string, fn func(rel string, content []byte) error) error {
	if len(dirs) == 0 {
		dirs = []string{"."}
	}

	for _, dir := range dirs {
		base := filepath.Join(c.Root, filepath.FromSlash(dir))
		info, err := os.Stat(base)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
		if !info.IsDir() {
			continue
		}

		err = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			rel, err := filepath.Rel(c.Root, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)

			if d.IsDir() {
				if rel != "." && c.ignoredDir(rel) {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(d.Name(), ".md") || c.ignored(rel) {
				return nil
			}

			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", rel, err)
			}
			return fn(rel, content)
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (c *Corpus) ignored(rel string) bool {
	for _, pattern := range c.Ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// ignoredDir prunes a subtree when an ignore pattern would swallow its
// contents.
func (c *Corpus) ignoredDir(rel string) bool {
	for _, pattern := range c.Ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, rel+"/"); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, rel+"/any"); ok {
			return true
		}
	}
	return false
}

// SplitFrontmatter separates a YAML frontmatter block from the document
// body. Documents without a leading "---" line have no metadata; a started
// but unterminated block is an error.
func SplitFrontmatter(content []byte) (meta map[string]any, body string, err error) {
	if !bytes.HasPrefix(content, []byte("---\n")) && !bytes.HasPrefix(content, []byte("---\r\n")) {
		return nil, string(content), nil
	}

	rest := content[3:]
	parts := bytes.SplitN(rest, []byte("\n---"), 2)
	if len(parts) == 1 {
		return nil, "", errors.New("frontmatter started but no closing delimiter found")
	}

	if err := yaml.Unmarshal(parts[0], &meta); err != nil {
		return nil, "", fmt.Errorf("parsing frontmatter: %w", err)
	}

	body = string(parts[1])
	if i := strings.Index(body, "\n"); i >= 0 {
		body = body[i+1:]
	} else {
		body = ""
	}
	return meta, body, nil
}

// Tags extracts the frontmatter tag list, lower-cased. Both a YAML sequence
// and a single scalar are accepted.
func Tags(meta map[string]any) []string {
	raw, ok := meta["tags"]
	if !ok {
		return nil
	}

	var tags []string
	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				tags = append(tags, strings.ToLower(s))
			}
		}
	case string:
		if v != "" {
			tags = append(tags, strings.ToLower(v))
		}
	}
	return tags
}
