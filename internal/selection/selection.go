// Package selection tracks posts marked by the viewer for export.
package selection

import (
	"maps"
	"slices"

	"github.com/ibeckermayer/sentiview/internal/types"
)

// Set is a set of post IDs. The zero value is an empty set ready to use.
type Set struct {
	ids map[string]struct{}
}

// NewSet returns a set containing ids.
func NewSet(ids ...string) *Set {
	s := &Set{}
	for _, id := range ids {
		if !s.Has(id) {
			s.Toggle(id)
		}
	}
	return s
}

// Toggle adds id if absent and removes it otherwise. It returns whether id
// is selected afterwards.
func (s *Set) Toggle(id string) bool {
	if s.ids == nil {
		s.ids = make(map[string]struct{})
	}
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Has reports whether id is selected.
func (s *Set) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected posts.
func (s *Set) Len() int {
	return len(s.ids)
}

// IDs returns the selected IDs in sorted order.
func (s *Set) IDs() []string {
	return slices.Sorted(maps.Keys(s.ids))
}

// Clear empties the set.
func (s *Set) Clear() {
	clear(s.ids)
}

// Pick returns the selected posts in the order they appear in posts.
func (s *Set) Pick(posts []types.Post) []types.Post {
	out := make([]types.Post, 0, s.Len())
	for _, p := range posts {
		if s.Has(p.ID) {
			out = append(out, p)
		}
	}
	return out
}
