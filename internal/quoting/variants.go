package quoting

import "strings"

// Variant is a line item that may belong to a group of mutually exclusive options.
type Variant interface {
	// GroupKey is empty for regular items.
	GroupKey() string
	IsSelectedOption() bool
}

// Group is the set of options sharing one group key, in stored order.
type Group[T Variant] struct {
	Key   string
	Items []T
	// Selected indexes the option that counts towards totals.
	Selected int
}

// SelectedItem returns the option that contributes to totals.
func (g Group[T]) SelectedItem() T {
	return g.Items[g.Selected]
}

// Explicit reports whether the selected option was marked by the user rather than
// picked by the first-item fallback.
func (g Group[T]) Explicit() bool {
	return g.Items[g.Selected].IsSelectedOption()
}

// Grouped is the result of resolving a flat item list.
type Grouped[T Variant] struct {
	Regular []T
	Groups  []Group[T]
}

// Resolve partitions items into regular items and variant groups.
// Groups keep the order in which their key first appears. Within a group the first
// item marked selected wins; when none is marked the first item in stored order is
// treated as selected.
func Resolve[T Variant](items []T) Grouped[T] {
	var out Grouped[T]
	index := map[string]int{}
	for _, it := range items {
		key := strings.TrimSpace(it.GroupKey())
		if key == "" {
			out.Regular = append(out.Regular, it)
			continue
		}
		gi, ok := index[key]
		if !ok {
			gi = len(out.Groups)
			index[key] = gi
			out.Groups = append(out.Groups, Group[T]{Key: key, Selected: -1})
		}
		g := &out.Groups[gi]
		g.Items = append(g.Items, it)
		if g.Selected < 0 && it.IsSelectedOption() {
			g.Selected = len(g.Items) - 1
		}
	}
	for i := range out.Groups {
		if out.Groups[i].Selected < 0 {
			out.Groups[i].Selected = 0
		}
	}
	return out
}

// ByKey returns the group with the given key.
func (g Grouped[T]) ByKey(key string) (Group[T], bool) {
	for _, grp := range g.Groups {
		if grp.Key == key {
			return grp, true
		}
	}
	return Group[T]{}, false
}

// Contributing returns the items that count towards totals: every regular item and
// the selected option of each group.
func (g Grouped[T]) Contributing() []T {
	out := make([]T, 0, len(g.Regular)+len(g.Groups))
	out = append(out, g.Regular...)
	for _, grp := range g.Groups {
		out = append(out, grp.SelectedItem())
	}
	return out
}
