package git

import (
	"strings"
)

// CommitType constants for semantic commits
const (
	CommitTypeFeat     = "feat"
	CommitTypeFix      = "fix"
	CommitTypeDocs     = "docs"
	CommitTypeStyle    = "style"
	CommitTypeRefactor = "refactor"
	CommitTypePerf     = "perf"
	CommitTypeTest     = "test"
	CommitTypeChore    = "chore"
)

// FormatCommitMessage builds a Conventional Commit message.
// logic:
//
//	<type>(<scope>): <subject>
//
//	<body>
//
//	Powered-by: Quarry
func FormatCommitMessage(ctype, scope, subject, body string) string {
	var sb strings.Builder

	// Header
	if ctype == "" {
		ctype = CommitTypeDocs // Updates to the corpus are documentation changes by default
	}
	sb.WriteString(ctype)

	if scope != "" {
		sb.WriteString("(")
		sb.WriteString(scope)
		sb.WriteString(")")
	}

	sb.WriteString(": ")
	sb.WriteString(subject)

	// Body
	if body != "" {
		sb.WriteString("\n\n")
		sb.WriteString(strings.TrimSpace(body))
	}

	// Footer
	sb.WriteString("\n\n")
	sb.WriteString("Powered-by: Quarry")

	return sb.String()
}

// SanitizeRef turns an arbitrary string into a branch-name-safe slug:
// runs of non-alphanumeric characters collapse to a single dash.
func SanitizeRef(s string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			dash = false
		default:
			if !dash && sb.Len() > 0 {
				sb.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}
