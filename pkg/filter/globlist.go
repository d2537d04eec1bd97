// Package filter provides namespace filtering and pattern matching functionality.
package filter

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/lukaszraczylo/kubesecrets/pkg/operrors"
)

// GlobList is an ordered set of compiled glob patterns.
// It matches a candidate when any of its patterns does.
type GlobList struct {
	patterns []string
	globs    []glob.Glob
}

// NewGlobList compiles a whitespace-separated list of glob patterns.
// Empty tokens are ignored. The first pattern that fails to compile aborts the
// whole list and no partial matcher is returned.
func NewGlobList(patterns string) (*GlobList, error) {
	fields := strings.Fields(patterns)

	gl := &GlobList{
		patterns: make([]string, 0, len(fields)),
		globs:    make([]glob.Glob, 0, len(fields)),
	}

	for _, pattern := range fields {
		// No separators: "*" spans any run of characters.
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, operrors.New(operrors.KindPattern, "compile glob",
				fmt.Errorf("invalid glob pattern %q: %w", pattern, err))
		}
		gl.patterns = append(gl.patterns, pattern)
		gl.globs = append(gl.globs, g)
	}

	return gl, nil
}

// Match reports whether candidate matches at least one pattern.
func (gl *GlobList) Match(candidate string) bool {
	if gl == nil {
		return false
	}
	for _, g := range gl.globs {
		if g.Match(candidate) {
			return true
		}
	}
	return false
}

// Patterns returns the source patterns in compilation order.
func (gl *GlobList) Patterns() []string {
	if gl == nil {
		return nil
	}
	out := make([]string, len(gl.patterns))
	copy(out, gl.patterns)
	return out
}

// Len returns the number of compiled patterns.
func (gl *GlobList) Len() int {
	if gl == nil {
		return 0
	}
	return len(gl.globs)
}

func (gl *GlobList) String() string {
	return strings.Join(gl.Patterns(), " ")
}
