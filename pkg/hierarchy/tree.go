package hierarchy

import (
	"cmp"

	"github.com/vanderheijden86/aidscope/pkg/selection"
)

// CheckState is the display state of a node's checkbox.
type CheckState int

const (
	Unchecked CheckState = iota
	Checked
	Indeterminate
)

func (s CheckState) String() string {
	switch s {
	case Checked:
		return "checked"
	case Indeterminate:
		return "indeterminate"
	default:
		return "unchecked"
	}
}

// TreeOptions configures a Tree.
type TreeOptions struct {
	// Sync cascades checks to descendants and promotes a parent when all of
	// its children are checked.
	Sync bool
	// DefaultCollapseLevel collapses nodes at this depth or deeper the first
	// time they are seen. Zero collapses everything, a negative value
	// collapses nothing.
	DefaultCollapseLevel int
}

type lastToggle[K cmp.Ordered] struct {
	key    K
	before selection.Set[K]
	after  selection.Set[K]
	valid  bool
}

// Tree is the selection and collapse state of one tree input. Collapse state
// is derived from depth only the first time a key is seen; rebuilding the
// relations keeps the user's choices.
type Tree[K cmp.Ordered, T any] struct {
	rel       *Relations[K, T]
	label     func(T) string
	opts      TreeOptions
	collapsed map[K]bool
	last      lastToggle[K]
}

// NewTree creates a tree over rel. label renders an item for display and search.
func NewTree[K cmp.Ordered, T any](rel *Relations[K, T], label func(T) string, opts TreeOptions) *Tree[K, T] {
	t := &Tree[K, T]{
		label:     label,
		opts:      opts,
		collapsed: make(map[K]bool),
	}
	t.SetRelations(rel)
	return t
}

// SetRelations swaps in a rebuilt relation map. Keys seen before keep their
// collapse state, and the last toggle can still be undone while its key is
// present.
func (t *Tree[K, T]) SetRelations(rel *Relations[K, T]) {
	t.rel = rel
	if _, ok := rel.Get(t.last.key); !ok {
		t.last = lastToggle[K]{}
	}
	for _, k := range rel.Keys() {
		if _, seen := t.collapsed[k]; seen {
			continue
		}
		n, _ := rel.Get(k)
		t.collapsed[k] = t.opts.DefaultCollapseLevel >= 0 && n.Depth >= t.opts.DefaultCollapseLevel
	}
}

// Relations returns the current relation map.
func (t *Tree[K, T]) Relations() *Relations[K, T] { return t.rel }

// Sync reports whether the tree cascades checks.
func (t *Tree[K, T]) Sync() bool { return t.opts.Sync }

// IsCollapsed reports whether k hides its children.
func (t *Tree[K, T]) IsCollapsed(k K) bool { return t.collapsed[k] }

// ToggleCollapse flips k's collapsed flag. Nothing else changes.
func (t *Tree[K, T]) ToggleCollapse(k K) {
	if _, ok := t.rel.Get(k); !ok {
		return
	}
	t.collapsed[k] = !t.collapsed[k]
}

// SetAllCollapsed collapses or expands every node.
func (t *Tree[K, T]) SetAllCollapsed(collapsed bool) {
	for _, k := range t.rel.Keys() {
		t.collapsed[k] = collapsed
	}
}

// ToggleChecked returns sel with k checked or unchecked.
//
// Outside sync mode only k changes. In sync mode k's descendants follow it and
// ancestors are re-derived from their children. Unchecking the key that was
// just checked, while sel is still the result of that check, restores the
// selection from before the check.
func (t *Tree[K, T]) ToggleChecked(sel selection.Set[K], k K, checked bool) selection.Set[K] {
	if !checked && t.last.valid && t.last.key == k && sel.Equal(t.last.after) {
		restored := t.last.before
		t.last = lastToggle[K]{}
		return restored
	}

	next := Cascade(t.rel, sel, k, checked, t.opts.Sync)
	if t.opts.Sync {
		if n, ok := t.rel.Get(k); ok && n.HasParent {
			next = t.ChildSelectionChanged(next, n.Parent)
		}
	}

	if checked {
		t.last = lastToggle[K]{key: k, before: sel, after: next, valid: true}
	} else {
		t.last = lastToggle[K]{}
	}
	return next
}

// ChildSelectionChanged re-derives k from its children after one of them
// changed. In sync mode k is checked exactly when all of its direct children
// are, and the change is promoted to k's ancestors. Outside sync mode sel is
// returned unchanged.
func (t *Tree[K, T]) ChildSelectionChanged(sel selection.Set[K], k K) selection.Set[K] {
	if !t.opts.Sync {
		return sel
	}
	seen := make(map[K]bool)
	cur := k
	for {
		if seen[cur] {
			return sel
		}
		seen[cur] = true
		n, ok := t.rel.Get(cur)
		if !ok {
			return sel
		}
		children := t.rel.renderedChildren(cur)
		if len(children) > 0 {
			all := true
			for _, c := range children {
				if !sel.Has(c) {
					all = false
					break
				}
			}
			if all {
				sel = sel.With(cur)
			} else {
				sel = sel.Without(cur)
			}
		}
		if !n.HasParent {
			return sel
		}
		cur = n.Parent
	}
}

// State returns the checkbox state of k under sel. Indeterminate is only
// reported in sync mode, for an unchecked node with some checked descendants.
func (t *Tree[K, T]) State(sel selection.Set[K], k K) CheckState {
	if sel.Has(k) {
		return Checked
	}
	if !t.opts.Sync {
		return Unchecked
	}
	for _, d := range t.rel.Descendants(k) {
		if sel.Has(d) {
			return Indeterminate
		}
	}
	return Unchecked
}

// Cascade is the stateless part of ToggleChecked: it adds or removes k, and in
// sync mode every descendant of k.
func Cascade[K cmp.Ordered, T any](rel *Relations[K, T], sel selection.Set[K], k K, checked bool, sync bool) selection.Set[K] {
	keys := []K{k}
	if sync {
		keys = append(keys, rel.Descendants(k)...)
	}
	if checked {
		return sel.With(keys...)
	}
	return sel.Without(keys...)
}

// Label returns the display label of k.
func (t *Tree[K, T]) Label(k K) string {
	n, ok := t.rel.Get(k)
	if !ok || n.Item == nil {
		return ""
	}
	return t.label(*n.Item)
}
