package quoting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type rangeRule struct {
	name   string
	from   int
	to     *int
	active bool
}

func (r rangeRule) RangeFrom() int { return r.from }
func (r rangeRule) RangeTo() *int { return r.to }
func (r rangeRule) Active() bool { return r.active }

func intp(v int) *int { return &v }

func TestMatchRange(t *testing.T) {
	rules := []rangeRule{
		{name: "small", from: 1, to: intp(5), active: true},
		{name: "old-mid", from: 6, to: intp(10), active: false},
		{name: "mid", from: 6, to: intp(10), active: true},
		{name: "big", from: 11, active: true},
	}
	tests := []struct {
		x    int
		want string
		ok   bool
	}{
		{1, "small", true},
		{5, "small", true},
		{6, "mid", true},
		{10, "mid", true},
		{11, "big", true},
		{5000, "big", true},
		{0, "", false},
	}
	for _, tt := range tests {
		got, ok := MatchRange(rules, tt.x)
		assert.Equal(t, tt.ok, ok, "x=%d", tt.x)
		assert.Equal(t, tt.want, got.name, "x=%d", tt.x)
	}
}

func TestMatchRangeOverlapTakesFirst(t *testing.T) {
	rules := []rangeRule{
		{name: "wide", from: 1, active: true},
		{name: "narrow", from: 2, to: intp(3), active: true},
	}
	got, ok := MatchRange(rules, 2)
	assert.True(t, ok)
	assert.Equal(t, "wide", got.name)
}

func TestSortRanges(t *testing.T) {
	rules := []rangeRule{
		{name: "c", from: 20},
		{name: "a", from: 1},
		{name: "b1", from: 10},
		{name: "b2", from: 10},
	}
	SortRanges(rules)
	var got []string
	for _, r := range rules {
		got = append(got, r.name)
	}
	assert.Equal(t, []string{"a", "b1", "b2", "c"}, got)
}

func TestValidRange(t *testing.T) {
	assert.True(t, ValidRange(0, nil))
	assert.True(t, ValidRange(5, intp(5)))
	assert.False(t, ValidRange(5, intp(4)))
	assert.False(t, ValidRange(-1, nil))
}
