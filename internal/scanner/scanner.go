// # internal/scanner/scanner.go
package scanner

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"tangle/internal/diag"
	tangleerrors "tangle/internal/errors"
)

// Directories that never contain analyzable sources.
var prunedDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"build":        true,
	"coverage":     true,
	".next":        true,
	".cache":       true,
}

type Scanner struct {
	extensions []string
	include    []glob.Glob
	exclude    []glob.Glob
	sink       diag.Sink
}

// New compiles the include/exclude patterns. A malformed pattern is reported
// through the sink and dropped; the remaining patterns still apply.
func New(extensions, include, exclude []string, sink diag.Sink) *Scanner {
	if sink == nil {
		sink = diag.Nop()
	}
	return &Scanner{
		extensions: extensions,
		include:    compilePatterns(include, sink),
		exclude:    compilePatterns(exclude, sink),
		sink:       sink,
	}
}

func compilePatterns(patterns []string, sink diag.Sink) []glob.Glob {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			sink.Emit(diag.PatternIgnored{Pattern: p, Err: err})
			continue
		}
		globs = append(globs, g)
	}
	return globs
}

// Scan walks root and returns the candidate files as root-relative,
// forward-slash paths. WalkDir visits entries in lexical order, so the
// result is deterministic for an unchanged tree.
func (s *Scanner) Scan(root string) ([]string, error) {
	var files []string

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		base := filepath.Base(path)
		if d.IsDir() {
			if path != root && (prunedDirs[base] || strings.HasPrefix(base, ".")) {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if !s.hasCandidateExtension(rel) {
			return nil
		}
		if !s.Selected(rel) {
			return nil
		}

		files = append(files, rel)
		return nil
	})
	if walkErr != nil {
		return nil, tangleerrors.Wrap(walkErr, tangleerrors.CodeInternal, "directory walk failed")
	}

	return files, nil
}

func (s *Scanner) hasCandidateExtension(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range s.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Selected applies the include/exclude policy to a root-relative path.
// Exclude wins over include; no include patterns means all non-excluded
// files pass. Patterns match against the full relative path and the base
// name so that both "*.test.*" and "legacy/*" style patterns work.
func (s *Scanner) Selected(rel string) bool {
	if s.Excluded(rel) {
		return false
	}
	if len(s.include) == 0 {
		return true
	}
	return matchAny(s.include, rel)
}

// Excluded reports whether a root-relative path hits an exclude pattern.
// The graph builder reuses this to drop resolved edges that point at
// excluded files.
func (s *Scanner) Excluded(rel string) bool {
	return matchAny(s.exclude, rel)
}

func matchAny(globs []glob.Glob, rel string) bool {
	base := filepath.Base(rel)
	for _, g := range globs {
		if g.Match(rel) || g.Match(base) {
			return true
		}
	}
	return false
}
