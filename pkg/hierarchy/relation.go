// Package hierarchy builds parent/child relations over flat option lists and
// implements tree selection state on top of them: collapse state, cascading
// ("sync") checks, indeterminate display and search.
package hierarchy

import (
	"cmp"

	"github.com/vanderheijden86/aidscope/pkg/metrics"
)

// Node is one key of a relation map.
type Node[K cmp.Ordered, T any] struct {
	Key K
	// Item is nil for keys that are only referenced as a parent.
	Item *T
	// Parent is set when HasParent is true and the parent exists as an item.
	Parent    K
	HasParent bool
	// Direct children in input order.
	Direct []K
	// Descendants in depth-first pre-order, excluding the node itself.
	Descendants []K
	// Depth from the rendered root (0 for roots). Synthesized nodes have -1.
	Depth int
}

// IsSynthesized reports whether the node exists only because some item
// referenced it as a parent.
func (n *Node[K, T]) IsSynthesized() bool { return n.Item == nil }

// Relations is a read-only relation map. Build a new one whenever the option
// list changes.
type Relations[K cmp.Ordered, T any] struct {
	nodes map[K]*Node[K, T]
	roots []K
	order []K // item keys in input order
}

// BuildRelations maps every key present in items, plus every key referenced
// only as a parent, to its direct children and full descendant list.
//
// Items whose parent is not in the list are roots. Parent chains that loop
// are broken at the first member (in input order) not reachable from a root,
// which is promoted to a root; descendant walks never revisit a key.
func BuildRelations[T any, K cmp.Ordered](items []T, key func(T) K, parent func(T) (K, bool)) *Relations[K, T] {
	defer metrics.Timer(metrics.RelationBuild)()

	r := &Relations[K, T]{
		nodes: make(map[K]*Node[K, T], len(items)),
		order: make([]K, 0, len(items)),
	}

	// Step 1: one node per item; the first occurrence of a duplicate key wins.
	for i := range items {
		k := key(items[i])
		if n, ok := r.nodes[k]; ok && n.Item != nil {
			continue
		}
		r.nodes[k] = &Node[K, T]{Key: k, Item: &items[i], Depth: -1}
		r.order = append(r.order, k)
	}

	// Step 2: direct children, synthesizing parent-only keys.
	for _, k := range r.order {
		n := r.nodes[k]
		p, ok := parent(*n.Item)
		if !ok || p == k {
			continue
		}
		pn, exists := r.nodes[p]
		if !exists {
			pn = &Node[K, T]{Key: p, Depth: -1}
			r.nodes[p] = pn
		}
		pn.Direct = append(pn.Direct, k)
		if pn.Item != nil {
			n.Parent = p
			n.HasParent = true
		}
	}

	// Step 3: roots are items without a present parent.
	for _, k := range r.order {
		if !r.nodes[k].HasParent {
			r.roots = append(r.roots, k)
		}
	}

	// Step 4: depth-first walk from the roots; promote unreachable cycle members.
	reached := make(map[K]bool, len(r.order))
	for _, k := range r.roots {
		r.assignDepth(k, 0, reached)
	}
	for _, k := range r.order {
		if reached[k] {
			continue
		}
		n := r.nodes[k]
		n.HasParent = false
		var zero K
		n.Parent = zero
		r.roots = append(r.roots, k)
		r.assignDepth(k, 0, reached)
	}

	// Step 5: descendants for every node, items and synthesized alike.
	for _, n := range r.nodes {
		n.Descendants = r.collectDescendants(n.Key)
	}

	return r
}

func (r *Relations[K, T]) assignDepth(k K, depth int, reached map[K]bool) {
	if reached[k] {
		return
	}
	reached[k] = true
	n := r.nodes[k]
	n.Depth = depth
	for _, c := range n.Direct {
		cn := r.nodes[c]
		// A cycle member promoted later must not be claimed as a child here.
		if cn.HasParent && cn.Parent == k {
			r.assignDepth(c, depth+1, reached)
		}
	}
}

func (r *Relations[K, T]) collectDescendants(k K) []K {
	var out []K
	visited := map[K]bool{k: true}
	var walk func(K)
	walk = func(cur K) {
		n := r.nodes[cur]
		if n == nil {
			return
		}
		for _, c := range n.Direct {
			if visited[c] {
				continue
			}
			visited[c] = true
			out = append(out, c)
			walk(c)
		}
	}
	walk(k)
	return out
}

// Get returns the node for k.
func (r *Relations[K, T]) Get(k K) (*Node[K, T], bool) {
	if r == nil {
		return nil, false
	}
	n, ok := r.nodes[k]
	return n, ok
}

// Children returns the direct children of k.
func (r *Relations[K, T]) Children(k K) []K {
	if n, ok := r.Get(k); ok {
		return n.Direct
	}
	return nil
}

// Descendants returns every descendant of k.
func (r *Relations[K, T]) Descendants(k K) []K {
	if n, ok := r.Get(k); ok {
		return n.Descendants
	}
	return nil
}

// Ancestors returns the rendered ancestors of k from its parent up to the root.
func (r *Relations[K, T]) Ancestors(k K) []K {
	var out []K
	seen := map[K]bool{k: true}
	n, ok := r.Get(k)
	for ok && n.HasParent && !seen[n.Parent] {
		seen[n.Parent] = true
		out = append(out, n.Parent)
		n, ok = r.Get(n.Parent)
	}
	return out
}

// Roots returns the rendered roots in input order.
func (r *Relations[K, T]) Roots() []K {
	if r == nil {
		return nil
	}
	return r.roots
}

// Keys returns every item key in input order.
func (r *Relations[K, T]) Keys() []K {
	if r == nil {
		return nil
	}
	return r.order
}

// Len returns the number of items.
func (r *Relations[K, T]) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// renderedChildren returns the children that hang under k in the tree view.
func (r *Relations[K, T]) renderedChildren(k K) []K {
	n, ok := r.Get(k)
	if !ok {
		return nil
	}
	out := make([]K, 0, len(n.Direct))
	for _, c := range n.Direct {
		if cn := r.nodes[c]; cn.HasParent && cn.Parent == k {
			out = append(out, c)
		}
	}
	return out
}
