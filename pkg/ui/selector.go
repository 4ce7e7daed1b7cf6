package ui

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/vanderheijden86/aidscope/pkg/hierarchy"
	"github.com/vanderheijden86/aidscope/pkg/model"
	"github.com/vanderheijden86/aidscope/pkg/selection"
)

// FuzzyMatcher matches labels holding the query's characters in order, the
// way fzf does. An empty query matches everything and returns nil.
func FuzzyMatcher(query string) hierarchy.Matcher {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil
	}
	return func(label string) bool {
		return len(fuzzy.Find(q, []string{label})) > 0
	}
}

// SelectorItem is one dimension's tree input as shown in the left pane.
type SelectorItem struct {
	Dim model.Dimension
	*hierarchy.Selector[model.Key, model.Option]
}

// NewSelectorItem creates an empty selector for dim. Options arrive later via
// SetOptions.
func NewSelectorItem(dim model.Dimension, opts hierarchy.TreeOptions, expanded *hierarchy.ExpandedFilters, fuzzySearch bool) *SelectorItem {
	rel := hierarchy.BuildRelations[model.Option, model.Key](nil, model.OptionKey, model.OptionParent)
	tree := hierarchy.NewTree(rel, func(o model.Option) string { return o.Label }, opts)
	s := &SelectorItem{
		Dim:      dim,
		Selector: hierarchy.NewSelector(string(dim), tree, expanded),
	}
	if fuzzySearch {
		s.SetMatcher(FuzzyMatcher)
	}
	return s
}

// SetOptions rebuilds the tree from a new option list. Collapse state and
// search text survive.
func (s *SelectorItem) SetOptions(opts []model.Option) {
	s.Tree.SetRelations(hierarchy.BuildRelations(opts, model.OptionKey, model.OptionParent))
	s.Refresh()
}

// Len returns the number of options on offer.
func (s *SelectorItem) Len() int { return s.Tree.Relations().Len() }

// Header renders the collapsible heading with the selected count.
func (s *SelectorItem) Header(sel selection.Set[model.Key], focused bool, t Theme) string {
	arrow := "▸"
	if s.Expanded() {
		arrow = "▾"
	}
	title := fmt.Sprintf("%s %s", arrow, s.Dim.Title())
	count := fmt.Sprintf(" %d/%d", sel.Len(), s.Len())
	if focused {
		return t.PrimaryBold.Render(title) + t.MutedText.Render(count)
	}
	return t.Base.Render(title) + t.MutedText.Render(count)
}

// View renders the header and, when expanded, up to height tree rows around
// the cursor.
func (s *SelectorItem) View(sel selection.Set[model.Key], width, height int, focused bool, t Theme) string {
	lines := []string{s.Header(sel, focused, t)}
	if !s.Expanded() {
		return lines[0]
	}
	if q := s.Search(); q != "" {
		lines = append(lines, t.SecondaryText.Render("  / "+q))
	}

	rows := s.Rows()
	if len(rows) == 0 {
		msg := "  no options"
		if s.Search() != "" {
			msg = "  no matches"
		}
		return strings.Join(append(lines, t.MutedText.Render(msg)), "\n")
	}

	height = max(1, height-len(lines))
	start := 0
	if s.Cursor() >= height {
		start = s.Cursor() - height + 1
	}
	end := min(len(rows), start+height)
	for i := start; i < end; i++ {
		lines = append(lines, s.renderRow(rows[i], sel, width, focused && i == s.Cursor(), t))
	}
	return strings.Join(lines, "\n")
}

func (s *SelectorItem) renderRow(r hierarchy.Row[model.Key], sel selection.Set[model.Key], width int, cursor bool, t Theme) string {
	marker := "  "
	if cursor {
		marker = t.PrimaryBold.Render("> ")
	}
	fold := " "
	if r.HasChildren {
		fold = "▾"
		if r.Collapsed && s.Search() == "" {
			fold = "▸"
		}
	}
	prefix := t.MutedText.Render(r.Prefix())
	box := t.Checkbox(s.Tree.State(sel, r.Key))

	used := 2 + len([]rune(r.Prefix())) + 6
	label := truncate(r.Label, max(4, width-used))
	switch {
	case r.Context:
		label = t.SecondaryText.Render(label)
	case cursor:
		label = t.Selected.Render(label)
	}
	return marker + prefix + fold + " " + box + " " + label
}
