// # internal/resolver/alias.go
package resolver

import "strings"

// Alias maps a specifier pattern to an ordered list of replacement
// templates. A pattern contains at most one wildcard; an exact pattern
// (no wildcard) matches only an identical specifier.
type Alias struct {
	Pattern string
	Targets []string
}

// match reports whether the specifier matches the alias pattern and, for
// wildcard patterns, returns the substring captured at the wildcard.
func (a Alias) match(specifier string) (string, bool) {
	star := strings.Index(a.Pattern, "*")
	if star < 0 {
		return "", specifier == a.Pattern
	}

	prefix := a.Pattern[:star]
	suffix := a.Pattern[star+1:]
	if len(specifier) < len(prefix)+len(suffix) {
		return "", false
	}
	if !strings.HasPrefix(specifier, prefix) || !strings.HasSuffix(specifier, suffix) {
		return "", false
	}
	return specifier[len(prefix) : len(specifier)-len(suffix)], true
}

// matchesPrefix reports whether the specifier falls under the alias
// namespace at all. Used for candidate classification: a bare specifier
// that matches an alias prefix is not an external package.
func (a Alias) matchesPrefix(specifier string) bool {
	star := strings.Index(a.Pattern, "*")
	if star < 0 {
		return specifier == a.Pattern
	}
	return strings.HasPrefix(specifier, a.Pattern[:star])
}

// expand substitutes the captured wildcard text into a replacement
// template. A template without a wildcard is used verbatim.
func expand(template, captured string) string {
	if !strings.Contains(template, "*") {
		return template
	}
	return strings.Replace(template, "*", captured, 1)
}
