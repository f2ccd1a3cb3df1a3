package quoting

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	name     string
	qty      int
	price    string
	group    string
	selected bool
}

func (i item) GroupKey() string { return i.group }
func (i item) IsSelectedOption() bool { return i.selected }
func (i item) LineTotal() decimal.Decimal {
	return decimal.RequireFromString(i.price).Mul(decimal.NewFromInt(int64(i.qty)))
}

func names(items []item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.name
	}
	return out
}

func TestResolveSeparatesRegularAndGroups(t *testing.T) {
	items := []item{
		{name: "mug", group: ""},
		{name: "pen-blue", group: "pens"},
		{name: "cap", group: "  "},
		{name: "bag-s", group: "bags"},
		{name: "pen-red", group: "pens", selected: true},
		{name: "bag-l", group: "bags"},
	}
	g := Resolve(items)

	assert.Equal(t, []string{"mug", "cap"}, names(g.Regular))
	require.Len(t, g.Groups, 2)
	assert.Equal(t, "pens", g.Groups[0].Key)
	assert.Equal(t, "bags", g.Groups[1].Key)

	pens, ok := g.ByKey("pens")
	require.True(t, ok)
	assert.Equal(t, "pen-red", pens.SelectedItem().name)
	assert.True(t, pens.Explicit())

	_, ok = g.ByKey("nope")
	assert.False(t, ok)
}

func TestResolveFallsBackToFirstItem(t *testing.T) {
	g := Resolve([]item{
		{name: "a1", group: "A"},
		{name: "a2", group: "A"},
	})
	require.Len(t, g.Groups, 1)
	assert.Equal(t, "a1", g.Groups[0].SelectedItem().name)
	assert.False(t, g.Groups[0].Explicit())
}

func TestResolveFirstExplicitSelectionWins(t *testing.T) {
	g := Resolve([]item{
		{name: "a1", group: "A"},
		{name: "a2", group: "A", selected: true},
		{name: "a3", group: "A", selected: true},
	})
	assert.Equal(t, "a2", g.Groups[0].SelectedItem().name)
}

func TestContributingHasOnePerGroup(t *testing.T) {
	g := Resolve([]item{
		{name: "r", group: ""},
		{name: "a1", group: "A"},
		{name: "b1", group: "B"},
		{name: "a2", group: "A", selected: true},
		{name: "b2", group: "B"},
	})
	assert.Equal(t, []string{"r", "a2", "b1"}, names(g.Contributing()))
}

func TestResolveEmpty(t *testing.T) {
	g := Resolve[item](nil)
	assert.Empty(t, g.Regular)
	assert.Empty(t, g.Groups)
	assert.Empty(t, g.Contributing())
}
