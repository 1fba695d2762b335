// Package ocr extracts text from screenshots. Two engines are supported:
// a local tesseract binary and the Google Vision API. Engines register under
// a short name so clients can pick one per request.
package ocr

import (
	"context"
	"sort"
	"strings"
)

// Engine pulls visible text out of an image. Implementations return an
// empty string with a nil error when no text is found.
type Engine interface {
	Name() string
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// Registry holds the configured engines keyed by name, with a default used
// when a request names no engine or an unknown one.
type Registry struct {
	engines     map[string]Engine
	defaultName string
}

func NewRegistry(defaultName string, engines ...Engine) *Registry {
	r := &Registry{
		engines:     make(map[string]Engine, len(engines)),
		defaultName: defaultName,
	}
	for _, e := range engines {
		r.engines[e.Name()] = e
	}
	return r
}

// Engine resolves a name to an engine, falling back to the default for
// empty or unknown names.
func (r *Registry) Engine(name string) Engine {
	if e, ok := r.engines[name]; ok {
		return e
	}
	return r.engines[r.defaultName]
}

// Names returns the registered engine names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultName returns the fallback engine name.
func (r *Registry) DefaultName() string { return r.defaultName }

func normalize(text string) string {
	return strings.TrimSpace(text)
}
