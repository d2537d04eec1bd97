package filter

import (
	"strings"
)

// NamespaceFilter applies operator-wide namespace rules on top of the per-secret
// allow and deny lists. Excluded namespaces never receive copies, whatever the
// secret annotations say.
type NamespaceFilter struct {
	excludedNamespaces map[string]bool
	included           *GlobList
}

// NewNamespaceFilter creates a new NamespaceFilter with the given exclusions and
// inclusion patterns. An empty inclusion list allows every namespace that is not excluded.
func NewNamespaceFilter(excluded []string, included []string) (*NamespaceFilter, error) {
	excludedMap := make(map[string]bool, len(excluded))
	for _, ns := range excluded {
		excludedMap[ns] = true
	}

	nf := &NamespaceFilter{excludedNamespaces: excludedMap}

	if len(included) > 0 {
		gl, err := NewGlobList(strings.Join(included, " "))
		if err != nil {
			return nil, err
		}
		nf.included = gl
	}

	return nf, nil
}

// IsAllowed checks if a namespace is allowed based on filters.
// A nil filter allows everything.
func (nf *NamespaceFilter) IsAllowed(namespace string) bool {
	if nf == nil {
		return true
	}

	if nf.excludedNamespaces[namespace] {
		return false
	}

	if nf.included.Len() == 0 {
		return true
	}

	return nf.included.Match(namespace)
}

// ParseNamespaceList parses a comma-separated list of namespaces or patterns,
// as accepted on the command line.
func ParseNamespaceList(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}

	return result
}
