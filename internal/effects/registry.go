// Package effects maps the host-facing effect index to configured effect names.
package effects

import "strings"

// None is the sentinel name for "no effect, plain color mode".
const None = "none"

// Registry is an ordered, immutable list of effect names.
// The index is the wire value exposed to the host, so order matters: index 0
// is reserved for None and index i selects the i-th configured name.
type Registry struct {
	names []string
}

// NewRegistry copies names in configuration order.
func NewRegistry(names []string) *Registry {
	return &Registry{names: append([]string(nil), names...)}
}

// Len returns the number of configured effects.
func (r *Registry) Len() int {
	return len(r.names)
}

// Names returns a copy of the configured names.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// MaxIndex is the largest valid host-facing index.
func (r *Registry) MaxIndex() int {
	return len(r.names)
}

// NameAt returns the configured name for index, or None when the index is 0
// or out of range.
func (r *Registry) NameAt(index int) string {
	if index <= 0 || index > len(r.names) {
		return None
	}
	return r.names[index-1]
}

// IsNone reports whether index resolves to the None sentinel, case-insensitively.
func (r *Registry) IsNone(index int) bool {
	return strings.EqualFold(r.NameAt(index), None)
}
