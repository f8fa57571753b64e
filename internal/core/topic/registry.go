// Package topic defines the topic registry: the ordered set of document
// collections that scope uploads and chat retrieval, plus the current selection.
package topic

import (
	"slices"
	"strings"

	"github.com/hay-kot/ragdesk/internal/core/validate"
)

// DefaultTopics is the list used when the backend cannot provide one.
var DefaultTopics = []string{"ear-biometrics", "yolo-models", "startup-strategy"}

// Registry holds topic names in insertion order and the selected topic.
// Names are unique and non-empty. The selection is either empty or a member
// of the registry.
//
// Registry is not safe for concurrent use.
type Registry struct {
	names    []string
	selected string
}

// NewRegistry creates a registry from names. See Reset.
func NewRegistry(names ...string) *Registry {
	r := &Registry{}
	r.Reset(names)
	return r
}

// Reset replaces the registry contents. Blank and duplicate names are dropped,
// surrounding whitespace is trimmed, and the first remaining topic is selected.
func (r *Registry) Reset(names []string) {
	r.names = Normalize(names)
	r.selected = ""
	if len(r.names) > 0 {
		r.selected = r.names[0]
	}
}

// Names returns a copy of the topic names in order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Len returns the number of topics.
func (r *Registry) Len() int {
	return len(r.names)
}

// Selected returns the selected topic, or "" when nothing is selected.
func (r *Registry) Selected() string {
	return r.selected
}

// Contains reports whether name is a registered topic.
func (r *Registry) Contains(name string) bool {
	return slices.Contains(r.names, name)
}

// Select makes name the selected topic. It returns false when name is not
// registered, leaving the selection unchanged.
func (r *Registry) Select(name string) bool {
	if !r.Contains(name) {
		return false
	}
	r.selected = name
	return true
}

// Add appends name and selects it. Empty and duplicate names are rejected and
// leave the registry unchanged. Matching is exact after trimming.
func (r *Registry) Add(name string) bool {
	name = strings.TrimSpace(name)
	if validate.TopicName(name) != nil || r.Contains(name) {
		return false
	}

	r.names = append(r.names, name)
	r.selected = name
	return true
}

// Remove deletes name. When the removed topic was selected, the selection
// moves to the first remaining topic, or to none when the registry is empty.
func (r *Registry) Remove(name string) bool {
	idx := slices.Index(r.names, name)
	if idx < 0 {
		return false
	}

	r.names = slices.Delete(r.names, idx, idx+1)

	if r.selected == name {
		r.selected = ""
		if len(r.names) > 0 {
			r.selected = r.names[0]
		}
	}
	return true
}

// Normalize trims names and drops blanks and duplicates, keeping the first
// occurrence of each.
func Normalize(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if validate.TopicName(n) != nil || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
