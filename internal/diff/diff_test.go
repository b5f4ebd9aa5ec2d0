package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_Identical(t *testing.T) {
	for _, text := range []string{"", "a", "a\nb\nc", "trailing\n", "\n\n"} {
		assert.Empty(t, Compute(text, text), "text %q", text)
	}
}

func TestCompute_ReplacedMiddleLine(t *testing.T) {
	got := Compute("a\nb\nc", "a\nx\nc")
	want := []Line{
		{Type: Unchanged, Text: "a"},
		{Type: Removed, Text: "b"},
		{Type: Added, Text: "x"},
		{Type: Unchanged, Text: "c"},
	}
	assert.Equal(t, want, got)
}

func TestCompute_Insert(t *testing.T) {
	got := Compute("import os\n\nfunc main() {}", "import os\nimport sys\n\nfunc main() {}")
	want := []Line{
		{Type: Unchanged, Text: "import os"},
		{Type: Added, Text: "import sys"},
		{Type: Unchanged, Text: ""},
		{Type: Unchanged, Text: "func main() {}"},
	}
	assert.Equal(t, want, got)
}

func TestCompute_Deletion(t *testing.T) {
	got := Compute("apple\nbanana\ncherry", "apple\ncherry")
	want := []Line{
		{Type: Unchanged, Text: "apple"},
		{Type: Removed, Text: "banana"},
		{Type: Unchanged, Text: "cherry"},
	}
	assert.Equal(t, want, got)
}

func TestCompute_FromEmpty(t *testing.T) {
	got := Compute("", "one\ntwo")
	want := []Line{
		{Type: Removed, Text: ""},
		{Type: Added, Text: "one"},
		{Type: Added, Text: "two"},
	}
	assert.Equal(t, want, got)
}

func TestCompute_TrailingNewlinePreserved(t *testing.T) {
	got := Compute("a\nb", "a\nb\n")
	want := []Line{
		{Type: Unchanged, Text: "a"},
		{Type: Unchanged, Text: "b"},
		{Type: Added, Text: ""},
	}
	assert.Equal(t, want, got)
}

func TestCompute_TieBreakPrefersAdditionWhenBacktracking(t *testing.T) {
	// Nothing in common: backtracking emits additions first, so after reversal
	// removals of the original precede additions of the revision.
	got := Compute("x\ny", "p\nq")
	want := []Line{
		{Type: Removed, Text: "x"},
		{Type: Removed, Text: "y"},
		{Type: Added, Text: "p"},
		{Type: Added, Text: "q"},
	}
	assert.Equal(t, want, got)
}

func TestCompute_RoundTrip(t *testing.T) {
	cases := []struct {
		name     string
		original string
		revised  string
	}{
		{"replace", "a\nb\nc", "a\nx\nc"},
		{"reorder", "one\ntwo\nthree\nfour", "four\none\nthree\ntwo"},
		{"duplicates", "x\nx\ny\nx", "x\ny\ny\nx\nx"},
		{"grow", "func f() {\n}", "func f() {\n\treturn 1\n}\n"},
		{"shrink", "a\nb\nc\nd\ne", "c"},
		{"to empty", "a\nb", ""},
		{"from empty", "", "a\nb"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lines := Compute(tc.original, tc.revised)
			require.NotEmpty(t, lines)
			assert.Equal(t, tc.original, ApplyOriginal(lines))
			assert.Equal(t, tc.revised, ApplyRevised(lines))
		})
	}
}

func TestCompute_UnchangedCountIsLCS(t *testing.T) {
	lines := Compute("a\nb\nc\nd", "b\nc\nd\ne")
	same := 0
	for _, l := range lines {
		if l.Type == Unchanged {
			same++
		}
	}
	assert.Equal(t, 3, same)
	added, removed := Stats(lines)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, removed)
}

func TestRender(t *testing.T) {
	out := Render(Compute("a\nb\nc", "a\nx\nc"))
	assert.Equal(t, "  a\n- b\n+ x\n  c", out)
	assert.Equal(t, "", Render(nil))
}

func TestTooLarge(t *testing.T) {
	assert.False(t, TooLarge("a\nb", "c"))
	big := strings.Repeat("line\n", 2500)
	assert.True(t, TooLarge(big, big))
}
