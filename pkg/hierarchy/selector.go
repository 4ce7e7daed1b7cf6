package hierarchy

import (
	"cmp"
	"slices"

	"github.com/vanderheijden86/aidscope/pkg/selection"
)

// ExpandedFilters is the caller-owned list of dimension names whose selector is
// expanded. Sibling selectors share one instance so expanding one is visible to
// the others.
type ExpandedFilters struct {
	names []string
}

// Expanded reports whether name is in the list.
func (e *ExpandedFilters) Expanded(name string) bool {
	return slices.Contains(e.names, name)
}

// Toggle adds name when absent and removes it when present.
func (e *ExpandedFilters) Toggle(name string) {
	if i := slices.Index(e.names, name); i >= 0 {
		e.names = slices.Delete(e.names, i, i+1)
		return
	}
	e.names = append(e.names, name)
}

// Set expands or collapses name.
func (e *ExpandedFilters) Set(name string, expanded bool) {
	if e.Expanded(name) != expanded {
		e.Toggle(name)
	}
}

// Names returns the expanded names in the order they were expanded.
func (e *ExpandedFilters) Names() []string {
	return slices.Clone(e.names)
}

// Selector is one dimension's tree input: a tree, its search text and a
// cursor over the visible rows. The selection itself lives with the caller.
type Selector[K cmp.Ordered, T any] struct {
	Name     string
	Tree     *Tree[K, T]
	expanded *ExpandedFilters

	search  string
	matcher func(query string) Matcher
	cursor  int
	rows    []Row[K]
}

// NewSelector wires a tree to a shared expanded-filters list.
func NewSelector[K cmp.Ordered, T any](name string, tree *Tree[K, T], expanded *ExpandedFilters) *Selector[K, T] {
	if expanded == nil {
		expanded = &ExpandedFilters{}
	}
	s := &Selector[K, T]{
		Name:     name,
		Tree:     tree,
		expanded: expanded,
		matcher:  SubstringMatcher,
	}
	s.Refresh()
	return s
}

// SetMatcher replaces the query-to-matcher function used by search.
func (s *Selector[K, T]) SetMatcher(fn func(query string) Matcher) {
	if fn == nil {
		fn = SubstringMatcher
	}
	s.matcher = fn
	s.Refresh()
}

// Expanded reports whether this selector is expanded.
func (s *Selector[K, T]) Expanded() bool { return s.expanded.Expanded(s.Name) }

// ToggleExpanded flips this selector in the shared list.
func (s *Selector[K, T]) ToggleExpanded() { s.expanded.Toggle(s.Name) }

// Search returns the current search text.
func (s *Selector[K, T]) Search() string { return s.search }

// SetSearch filters the visible rows. The selection is not touched.
func (s *Selector[K, T]) SetSearch(text string) {
	if text == s.search {
		return
	}
	s.search = text
	s.Refresh()
}

// Refresh recomputes the visible rows after the tree or search changed.
func (s *Selector[K, T]) Refresh() {
	var cur K
	hadCur := false
	if s.cursor >= 0 && s.cursor < len(s.rows) {
		cur, hadCur = s.rows[s.cursor].Key, true
	}
	s.rows = s.Tree.Visible(s.matcher(s.search))
	s.cursor = 0
	if hadCur {
		for i, r := range s.rows {
			if r.Key == cur {
				s.cursor = i
				break
			}
		}
	}
}

// Rows returns the visible rows.
func (s *Selector[K, T]) Rows() []Row[K] { return s.rows }

// Cursor returns the index of the highlighted row.
func (s *Selector[K, T]) Cursor() int { return s.cursor }

// Current returns the highlighted row's key.
func (s *Selector[K, T]) Current() (K, bool) {
	if s.cursor < 0 || s.cursor >= len(s.rows) {
		var zero K
		return zero, false
	}
	return s.rows[s.cursor].Key, true
}

// Move shifts the cursor by delta, clamped to the visible rows.
func (s *Selector[K, T]) Move(delta int) {
	s.cursor = max(0, min(s.cursor+delta, len(s.rows)-1))
}

// ToggleCurrent flips the highlighted row's check and returns the new selection.
func (s *Selector[K, T]) ToggleCurrent(sel selection.Set[K]) selection.Set[K] {
	k, ok := s.Current()
	if !ok {
		return sel
	}
	return s.Tree.ToggleChecked(sel, k, !sel.Has(k))
}

// CollapseCurrent flips the highlighted row's collapsed flag.
func (s *Selector[K, T]) CollapseCurrent() {
	if k, ok := s.Current(); ok {
		s.Tree.ToggleCollapse(k)
		s.Refresh()
	}
}
