package topic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	tests := []struct {
		name         string
		input        []string
		wantNames    []string
		wantSelected string
	}{
		{
			name:         "selects first topic",
			input:        []string{"a", "b", "c"},
			wantNames:    []string{"a", "b", "c"},
			wantSelected: "a",
		},
		{
			name:         "drops blanks and duplicates",
			input:        []string{"", "a", "  ", "b", "a", " b "},
			wantNames:    []string{"a", "b"},
			wantSelected: "a",
		},
		{
			name:         "empty",
			input:        nil,
			wantNames:    []string{},
			wantSelected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(tt.input...)
			assert.Equal(t, tt.wantNames, r.Names())
			assert.Equal(t, tt.wantSelected, r.Selected())
		})
	}
}

func TestRegistry_Add(t *testing.T) {
	t.Run("appends and selects", func(t *testing.T) {
		r := NewRegistry("a", "b")

		require.True(t, r.Add("c"))
		assert.Equal(t, []string{"a", "b", "c"}, r.Names())
		assert.Equal(t, "c", r.Selected())
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		r := NewRegistry()

		require.True(t, r.Add("  yolo-models "))
		assert.Equal(t, []string{"yolo-models"}, r.Names())
	})

	t.Run("rejects invalid names without change", func(t *testing.T) {
		for _, name := range []string{"", "   ", "a", " a ", "x\ny"} {
			r := NewRegistry("a", "b")
			r.Select("b")

			assert.False(t, r.Add(name), "name %q", name)
			assert.Equal(t, []string{"a", "b"}, r.Names())
			assert.Equal(t, "b", r.Selected())
		}
	})

	t.Run("matching is case sensitive", func(t *testing.T) {
		r := NewRegistry("yolo")

		assert.True(t, r.Add("YOLO"))
		assert.Equal(t, 2, r.Len())
	})
}

func TestRegistry_Remove(t *testing.T) {
	tests := []struct {
		name         string
		initial      []string
		selected     string
		remove       string
		wantOK       bool
		wantNames    []string
		wantSelected string
	}{
		{
			name:         "unselected topic keeps selection",
			initial:      []string{"a", "b", "c"},
			selected:     "a",
			remove:       "b",
			wantOK:       true,
			wantNames:    []string{"a", "c"},
			wantSelected: "a",
		},
		{
			name:         "selected topic moves selection to first",
			initial:      []string{"a", "b", "c"},
			selected:     "c",
			remove:       "c",
			wantOK:       true,
			wantNames:    []string{"a", "b"},
			wantSelected: "a",
		},
		{
			name:         "selected first topic moves to new first",
			initial:      []string{"a", "b"},
			selected:     "a",
			remove:       "a",
			wantOK:       true,
			wantNames:    []string{"b"},
			wantSelected: "b",
		},
		{
			name:         "last topic clears selection",
			initial:      []string{"a"},
			selected:     "a",
			remove:       "a",
			wantOK:       true,
			wantNames:    []string{},
			wantSelected: "",
		},
		{
			name:         "unknown topic",
			initial:      []string{"a"},
			selected:     "a",
			remove:       "z",
			wantOK:       false,
			wantNames:    []string{"a"},
			wantSelected: "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(tt.initial...)
			require.True(t, r.Select(tt.selected))

			assert.Equal(t, tt.wantOK, r.Remove(tt.remove))
			assert.Equal(t, tt.wantNames, r.Names())
			assert.Equal(t, tt.wantSelected, r.Selected())
		})
	}
}

func TestRegistry_Select(t *testing.T) {
	r := NewRegistry("a", "b")

	assert.True(t, r.Select("b"))
	assert.Equal(t, "b", r.Selected())

	assert.False(t, r.Select("missing"))
	assert.Equal(t, "b", r.Selected())
}

func TestRegistry_NamesIsCopy(t *testing.T) {
	r := NewRegistry("a", "b")

	names := r.Names()
	names[0] = "mutated"

	assert.Equal(t, []string{"a", "b"}, r.Names())
}

func TestRegistry_UniqueAfterOperations(t *testing.T) {
	r := NewRegistry(DefaultTopics...)
	ops := []string{"x", "ear-biometrics", "y", "x", "", "z"}
	for _, op := range ops {
		r.Add(op)
	}
	r.Remove("y")
	r.Add("y")

	seen := map[string]bool{}
	for _, n := range r.Names() {
		assert.False(t, seen[n], "duplicate %q", n)
		assert.NotEmpty(t, n)
		seen[n] = true
	}
	assert.True(t, r.Contains(r.Selected()))
}
