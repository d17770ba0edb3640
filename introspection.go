package quarry

import (
	"github.com/aretw0/introspection"
)

// ManagerState exposes internal state for observability.
type ManagerState struct {
	Root       string   `json:"root"`
	Categories []string `json:"categories"`
	Gitless    bool     `json:"gitless"`
}

// State implements introspection.Introspectable.
func (m *Manager) State() any {
	return ManagerState{
		Root:       m.root,
		Categories: append([]string{}, m.corpus.Categories...),
		Gitless:    m.gitless,
	}
}

// ComponentType implements introspection.Component.
func (m *Manager) ComponentType() string {
	return "ssot-manager"
}

var _ introspection.Introspectable = (*Manager)(nil)
var _ introspection.Component = (*Manager)(nil)
