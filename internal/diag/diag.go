// Package diag carries typed diagnostic events out of the analysis pipeline.
// Resolution code never writes to a console stream directly; it emits events
// into a caller-supplied sink.
package diag

import "log/slog"

type Event interface {
	Kind() string
}

// AliasMatched reports a specifier that resolved through a configured alias.
type AliasMatched struct {
	Alias     string
	Specifier string
	Resolved  string
}

func (AliasMatched) Kind() string { return "alias_matched" }

// ImportUnresolved reports a candidate specifier that no strategy could
// resolve to an in-tree file. Not an error, just a classification.
type ImportUnresolved struct {
	Specifier string
	FromFile  string
}

func (ImportUnresolved) Kind() string { return "import_unresolved" }

// FileSkipped reports a file whose content could not be read or parsed
// during the second build pass.
type FileSkipped struct {
	Path string
	Err  error
}

func (FileSkipped) Kind() string { return "file_skipped" }

// PatternIgnored reports a malformed include/exclude pattern that was
// dropped while the remaining patterns stayed in effect.
type PatternIgnored struct {
	Pattern string
	Err     error
}

func (PatternIgnored) Kind() string { return "pattern_ignored" }

type Sink interface {
	Emit(Event)
}

type nopSink struct{}

func (nopSink) Emit(Event) {}

// Nop returns a sink that discards every event.
func Nop() Sink { return nopSink{} }

// SlogSink forwards events to slog at debug level.
type SlogSink struct {
	Logger *slog.Logger
}

func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{Logger: logger}
}

func (s *SlogSink) Emit(ev Event) {
	switch e := ev.(type) {
	case AliasMatched:
		s.Logger.Debug("alias matched", "alias", e.Alias, "specifier", e.Specifier, "resolved", e.Resolved)
	case ImportUnresolved:
		s.Logger.Debug("import unresolved", "specifier", e.Specifier, "from", e.FromFile)
	case FileSkipped:
		s.Logger.Warn("file skipped", "path", e.Path, "error", e.Err)
	case PatternIgnored:
		s.Logger.Warn("ignoring malformed pattern", "pattern", e.Pattern, "error", e.Err)
	default:
		s.Logger.Debug("diagnostic", "kind", ev.Kind())
	}
}

// Collector retains every emitted event. Used by tests and the UI.
type Collector struct {
	Events []Event
}

func (c *Collector) Emit(ev Event) {
	c.Events = append(c.Events, ev)
}

func (c *Collector) ByKind(kind string) []Event {
	var out []Event
	for _, ev := range c.Events {
		if ev.Kind() == kind {
			out = append(out, ev)
		}
	}
	return out
}
