package hierarchy

import (
	"strings"
)

// Row is one visible line of a rendered tree.
type Row[K comparable] struct {
	Key         K
	Label       string
	Depth       int
	HasChildren bool
	Collapsed   bool
	// IsLast is true when no later sibling follows this row.
	IsLast bool
	// Ancestors' IsLast flags from the root down, for branch prefixes.
	Guides []bool
	// Context marks an ancestor shown only because a descendant matched.
	Context bool
}

// Matcher decides whether a label matches a search query.
type Matcher func(label string) bool

// SubstringMatcher matches labels containing query, case-insensitively. An
// empty query matches everything and returns nil.
func SubstringMatcher(query string) Matcher {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	return func(label string) bool {
		return strings.Contains(strings.ToLower(label), q)
	}
}

// Visible flattens the tree into the rows a tree input shows. With a nil
// matcher collapsed nodes hide their subtree. With a matcher only matching
// nodes and their ancestors are listed, and every path to a match is shown
// regardless of collapse state.
func (t *Tree[K, T]) Visible(match Matcher) []Row[K] {
	var keep map[K]bool
	if match != nil {
		keep = t.matchClosure(match)
		if len(keep) == 0 {
			return nil
		}
	}

	var rows []Row[K]
	seen := make(map[K]bool)
	var walk func(k K, depth int, isLast bool, guides []bool)
	walk = func(k K, depth int, isLast bool, guides []bool) {
		if seen[k] {
			return
		}
		seen[k] = true

		children := t.rel.renderedChildren(k)
		if keep != nil {
			filtered := children[:0:0]
			for _, c := range children {
				if keep[c] {
					filtered = append(filtered, c)
				}
			}
			children = filtered
		}

		row := Row[K]{
			Key:         k,
			Label:       t.Label(k),
			Depth:       depth,
			HasChildren: len(t.rel.renderedChildren(k)) > 0,
			Collapsed:   t.collapsed[k],
			IsLast:      isLast,
			Guides:      append([]bool(nil), guides...),
		}
		if match != nil {
			row.Context = !match(row.Label)
		}
		rows = append(rows, row)

		if match == nil && t.collapsed[k] {
			return
		}
		childGuides := append(append([]bool(nil), guides...), isLast)
		for i, c := range children {
			walk(c, depth+1, i == len(children)-1, childGuides)
		}
	}

	roots := t.rel.Roots()
	if keep != nil {
		filtered := roots[:0:0]
		for _, r := range roots {
			if keep[r] {
				filtered = append(filtered, r)
			}
		}
		roots = filtered
	}
	for i, r := range roots {
		walk(r, 0, i == len(roots)-1, nil)
	}
	return rows
}

// matchClosure returns the matching keys plus all of their ancestors.
func (t *Tree[K, T]) matchClosure(match Matcher) map[K]bool {
	keep := make(map[K]bool)
	for _, k := range t.rel.Keys() {
		if !match(t.Label(k)) {
			continue
		}
		keep[k] = true
		for _, a := range t.rel.Ancestors(k) {
			keep[a] = true
		}
	}
	return keep
}

// Prefix renders tree branch characters for a row, e.g. "│   └── ".
func (r Row[K]) Prefix() string {
	if r.Depth == 0 {
		return ""
	}
	var sb strings.Builder
	// Guides[0] belongs to the root, which draws no connector.
	for _, last := range r.Guides[1:] {
		if last {
			sb.WriteString("    ")
		} else {
			sb.WriteString("│   ")
		}
	}
	if r.IsLast {
		sb.WriteString("└── ")
	} else {
		sb.WriteString("├── ")
	}
	return sb.String()
}
