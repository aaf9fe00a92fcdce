// Package directive splits a document body into prose and embedded widget
// previews declared with :::component-preview type="...":::.
package directive

import (
	"fmt"
	"regexp"
	"sort"
)

var identifier = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Registry is the closed set of widget types a document may embed.
type Registry struct {
	types map[string]struct{}
}

// DefaultWidgetTypes are the widgets the site ships with.
var DefaultWidgetTypes = []string{
	"button", "input", "select", "checkbox", "radio", "switch", "tabs",
	"table", "modal", "tooltip", "badge", "card", "avatar", "tag", "toast",
	"pagination", "color-palette", "typography", "icon-grid", "spacing",
}

// NewRegistry returns a registry of the given types.
func NewRegistry(types ...string) *Registry {
	r := &Registry{types: make(map[string]struct{}, len(types))}
	for _, t := range types {
		r.types[t] = struct{}{}
	}
	return r
}

// DefaultRegistry returns a registry of DefaultWidgetTypes.
func DefaultRegistry() *Registry {
	return NewRegistry(DefaultWidgetTypes...)
}

// Validate reports the first type that is not a valid identifier. Call it
// at startup.
func (r *Registry) Validate() error {
	for _, t := range r.Types() {
		if !identifier.MatchString(t) {
			return fmt.Errorf("invalid widget type %q", t)
		}
	}
	return nil
}

// Has reports whether t is registered.
func (r *Registry) Has(t string) bool {
	_, ok := r.types[t]
	return ok
}

// Types returns the registered types in sorted order.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.types))
	for t := range r.types {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
