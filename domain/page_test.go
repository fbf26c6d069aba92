package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageClamping(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		total    int64
		perPage  int
		number   int
		numPages int
	}{
		{"default", "", 25, 10, 1, 3},
		{"explicit", "2", 25, 10, 2, 3},
		{"last", "3", 25, 10, 3, 3},
		{"beyond last", "99", 25, 10, 3, 3},
		{"zero", "0", 25, 10, 1, 3},
		{"negative", "-4", 25, 10, 1, 3},
		{"not a number", "abc", 25, 10, 1, 3},
		{"overflowing", "99999999999999999999", 25, 10, 3, 3},
		{"overflowing negative", "-99999999999999999999", 25, 10, 1, 3},
		{"whitespace", " 2 ", 25, 10, 2, 3},
		{"empty listing", "5", 0, 10, 1, 1},
		{"exact multiple", "2", 20, 10, 2, 2},
		{"non positive size", "1", 25, 0, 1, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage(tt.raw, tt.total, tt.perPage)
			assert.Equal(t, tt.number, p.Number)
			assert.Equal(t, tt.numPages, p.NumPages)
		})
	}
}

func TestPageNavigation(t *testing.T) {
	first := NewPage("1", 25, 10)
	assert.False(t, first.HasPrevious())
	assert.True(t, first.HasNext())
	assert.Equal(t, 0, first.Offset())
	assert.Equal(t, 2, first.NextPageNumber())

	last := NewPage("3", 25, 10)
	assert.True(t, last.HasPrevious())
	assert.False(t, last.HasNext())
	assert.Equal(t, 20, last.Offset())
	assert.Equal(t, 2, last.PreviousPageNumber())

	empty := NewPage("", 0, 10)
	assert.False(t, empty.HasOtherPages())
}

func TestPageSizesFollowFormula(t *testing.T) {
	const total, perPage = 23, 10
	for k := 1; k <= 3; k++ {
		p := NewPage(string(rune('0'+k)), total, perPage)
		want := perPage
		if rest := total - (k-1)*perPage; rest < perPage {
			want = rest
		}
		got := perPage
		if remaining := int(p.Total) - p.Offset(); remaining < perPage {
			got = remaining
		}
		assert.Equal(t, want, got, "page %d", k)
	}
}

func TestPostExcerpt(t *testing.T) {
	p := Post{Text: "Привет, мир и все остальные"}
	assert.Equal(t, "Привет, мир и в", p.Excerpt(15))
	assert.Equal(t, p.Text, p.Excerpt(100))
}
