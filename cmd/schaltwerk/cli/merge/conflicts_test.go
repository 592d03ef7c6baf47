package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChangedSpans(t *testing.T) {
	t.Parallel()

	base := "a\nb\nc\nd\ne\n"

	tests := []struct {
		name     string
		modified string
		want     []span
	}{
		{
			name:     "no_change",
			modified: base,
			want:     nil,
		},
		{
			name:     "replace_first_line",
			modified: "X\nb\nc\nd\ne\n",
			want:     []span{{Start: 0, End: 1}},
		},
		{
			name:     "delete_middle_line",
			modified: "a\nb\nd\ne\n",
			want:     []span{{Start: 2, End: 3}},
		},
		{
			name:     "insert_between_lines",
			modified: "a\nb\nNEW\nc\nd\ne\n",
			want:     []span{{Start: 2, End: 2}},
		},
		{
			name:     "replace_spanning_lines",
			modified: "a\nX\nY\nd\ne\n",
			want:     []span{{Start: 1, End: 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, changedSpans(base, tt.modified))
		})
	}
}

func TestOverlaps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		x, y span
		want bool
	}{
		{name: "intersecting_intervals", x: span{0, 2}, y: span{1, 3}, want: true},
		{name: "identical_intervals", x: span{1, 3}, y: span{1, 3}, want: true},
		{name: "adjacent_intervals_merge_cleanly", x: span{0, 2}, y: span{2, 4}, want: false},
		{name: "disjoint_intervals", x: span{0, 1}, y: span{5, 6}, want: false},
		{name: "insertions_at_same_point", x: span{2, 2}, y: span{2, 2}, want: true},
		{name: "insertions_at_different_points", x: span{2, 2}, y: span{3, 3}, want: false},
		{name: "insertion_strictly_inside_interval", x: span{2, 2}, y: span{1, 4}, want: true},
		{name: "insertion_at_interval_boundary", x: span{2, 2}, y: span{2, 4}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, overlaps(tt.x, tt.y))
			assert.Equal(t, tt.want, overlaps(tt.y, tt.x), "overlaps must be symmetric")
		})
	}
}

func TestCountLines(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, countLines(""))
	assert.Equal(t, 1, countLines("one\n"))
	assert.Equal(t, 1, countLines("no trailing newline"))
	assert.Equal(t, 2, countLines("a\nb\n"))
}

func TestIsBinary(t *testing.T) {
	t.Parallel()

	assert.False(t, isBinary("plain text\n"))
	assert.True(t, isBinary("has\x00nul"))
	assert.True(t, isBinary(string([]byte{0xff, 0xfe, 0x00})))
}
