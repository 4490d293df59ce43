package exportable

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Registry maps file extensions to exporters. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	exporters map[string]Exporter
}

// NewRegistry returns a registry holding exporters.
func NewRegistry(exporters ...Exporter) (*Registry, error) {
	r := &Registry{exporters: make(map[string]Exporter)}
	for _, e := range exporters {
		if err := r.Register(e); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds e under its extension, replacing any exporter already
// registered for it.
func (r *Registry) Register(e Exporter) error {
	if e == nil {
		return fmt.Errorf("%w: nil exporter", ErrConfiguration)
	}
	ext := normalizeExtension(e.Extension())
	if ext == "" {
		return fmt.Errorf("%w: exporter %T has no extension", ErrConfiguration, e)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exporters[ext] = e
	return nil
}

// Lookup returns the exporter for ext. A leading dot and letter case are
// ignored. "go-template=<tmpl>" builds a [TemplateExporter], and an
// unregistered "<ext>.zip" wraps the exporter for ext with [Zipped].
func (r *Registry) Lookup(ext string) (Exporter, error) {
	if tmpl, ok := strings.CutPrefix(ext, goTemplatePrefix); ok {
		return NewTemplateExporter(tmpl)
	}
	name := normalizeExtension(ext)
	r.mu.RLock()
	e, ok := r.exporters[name]
	r.mu.RUnlock()
	if ok {
		return e, nil
	}
	if inner, ok := strings.CutSuffix(name, ".zip"); ok && inner != "" {
		e, err := r.Lookup(inner)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownExtension, ext)
		}
		return Zipped(e), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownExtension, ext)
}

// Extensions returns the registered extensions in sorted order. The
// parameterized go-template format is not included.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.exporters))
	for ext := range r.exporters {
		out = append(out, ext)
	}
	slices.Sort(out)
	return out
}

func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

var defaultRegistry = mustRegistry(
	CSVExporter{},
	TSVExporter{},
	JSONExporter{},
	JSONLExporter{},
	YAMLExporter{},
	MarkdownExporter{},
	HTMLExporter{},
	TextExporter{},
	XLSXExporter{},
	ParquetExporter{},
	ArrowExporter{},
)

func mustRegistry(exporters ...Exporter) *Registry {
	r, err := NewRegistry(exporters...)
	if err != nil {
		panic(err)
	}
	return r
}

// Register adds e to the default registry.
func Register(e Exporter) error { return defaultRegistry.Register(e) }

// Lookup returns the exporter for ext from the default registry.
func Lookup(ext string) (Exporter, error) { return defaultRegistry.Lookup(ext) }

// Extensions returns the extensions of the default registry.
func Extensions() []string { return defaultRegistry.Extensions() }
