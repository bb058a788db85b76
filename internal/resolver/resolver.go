// # internal/resolver/resolver.go
package resolver

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"tangle/internal/diag"
)

const probeCacheSize = 8192

// Resolver turns raw import specifiers into root-relative file paths.
// Strategies are tried in a fixed priority order, first success wins:
//
//  1. relative to the referencing file (specifiers starting with ".")
//  2. alias table (ordered patterns, ordered replacement templates)
//  3. base-directory-relative
//  4. analysis root and root/src fallbacks
//
// Every returned path is relative to the analysis root with forward
// slashes, so that alias-based and relative-based imports of the same
// file produce an identical string.
type Resolver struct {
	root       string // absolute analysis root
	baseDir    string // absolute base directory, "" when unconfigured
	extensions []string
	aliases    []Alias
	sink       diag.Sink

	// stat results for probe targets, bounded per build
	probes *lru.Cache[string, bool]
}

func New(root, baseDir string, extensions []string, aliases []Alias, sink diag.Sink) *Resolver {
	if sink == nil {
		sink = diag.Nop()
	}
	cache, _ := lru.New[string, bool](probeCacheSize)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}
	absBase := ""
	if baseDir != "" {
		if filepath.IsAbs(baseDir) {
			absBase = filepath.Clean(baseDir)
		} else {
			absBase = filepath.Join(absRoot, baseDir)
		}
	}

	return &Resolver{
		root:       absRoot,
		baseDir:    absBase,
		extensions: extensions,
		aliases:    aliases,
		sink:       sink,
		probes:     cache,
	}
}

// IsCandidate classifies a specifier. A specifier with no leading relative
// or absolute marker, no internal path separator, and no alias prefix match
// is an external package reference: it never becomes a node and never
// appears as an unresolved diagnostic.
func (r *Resolver) IsCandidate(specifier string) bool {
	if specifier == "" {
		return false
	}
	if strings.HasPrefix(specifier, ".") || strings.HasPrefix(specifier, "/") {
		return true
	}
	if strings.Contains(specifier, "/") {
		return true
	}
	for _, a := range r.aliases {
		if a.matchesPrefix(specifier) {
			return true
		}
	}
	return false
}

// Resolve maps a specifier to the root-relative path of an in-tree file.
// The referencing file is given as a root-relative path. A false return is
// a classification (external or broken import), not an error.
func (r *Resolver) Resolve(specifier, fromFile string) (string, bool) {
	if specifier == "" {
		return "", false
	}

	// 1. relative to the importing file
	if strings.HasPrefix(specifier, ".") {
		base := filepath.Join(r.root, filepath.FromSlash(path.Dir(fromFile)))
		if hit, ok := r.probe(filepath.Join(base, filepath.FromSlash(specifier))); ok {
			return r.rel(hit), true
		}
	}

	// 2. alias table, in declaration order
	for _, a := range r.aliases {
		captured, ok := a.match(specifier)
		if !ok {
			continue
		}
		for _, target := range a.Targets {
			candidate := expand(target, captured)
			if hit, ok := r.probe(filepath.Join(r.aliasRoot(), filepath.FromSlash(candidate))); ok {
				resolved := r.rel(hit)
				r.sink.Emit(diag.AliasMatched{Alias: a.Pattern, Specifier: specifier, Resolved: resolved})
				return resolved, true
			}
		}
	}

	// 3. relative to the configured base directory
	if r.baseDir != "" {
		if hit, ok := r.probe(filepath.Join(r.baseDir, filepath.FromSlash(specifier))); ok {
			return r.rel(hit), true
		}
	}

	// 4. root and conventional src/ fallbacks
	if hit, ok := r.probe(filepath.Join(r.root, filepath.FromSlash(specifier))); ok {
		return r.rel(hit), true
	}
	if hit, ok := r.probe(filepath.Join(r.root, "src", filepath.FromSlash(specifier))); ok {
		return r.rel(hit), true
	}

	return "", false
}

func (r *Resolver) aliasRoot() string {
	if r.baseDir != "" {
		return r.baseDir
	}
	return r.root
}

// probe tries, in order: the path with each configured extension appended,
// the bare path (only if it is a file, not a directory), then an index file
// with each extension. The configured extension order decides ties, so if
// both x.ts and x.js exist the earlier-listed extension wins.
func (r *Resolver) probe(base string) (string, bool) {
	for _, ext := range r.extensions {
		if candidate := base + ext; r.isFile(candidate) {
			return candidate, true
		}
	}
	if r.isFile(base) {
		return base, true
	}
	for _, ext := range r.extensions {
		if candidate := filepath.Join(base, "index"+ext); r.isFile(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func (r *Resolver) isFile(p string) bool {
	p = filepath.Clean(p)
	if hit, ok := r.probes.Get(p); ok {
		return hit
	}
	info, err := os.Stat(p)
	result := err == nil && info.Mode().IsRegular()
	r.probes.Add(p, result)
	return result
}

func (r *Resolver) rel(abs string) string {
	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}
