// Package diff computes line-level edit scripts between two texts.
package diff

import "strings"

// LineType tags one line of an edit script.
type LineType string

const (
	Added     LineType = "add"
	Removed   LineType = "remove"
	Unchanged LineType = "same"
)

// Line is one entry of an edit script. Text carries the raw line without a marker.
type Line struct {
	Type LineType `json:"type"`
	Text string   `json:"text"`
}

// String renders the line with its display marker ("+ ", "- " or two spaces).
func (l Line) String() string {
	switch l.Type {
	case Added:
		return "+ " + l.Text
	case Removed:
		return "- " + l.Text
	default:
		return "  " + l.Text
	}
}

// MaxCells is the largest LCS table (lines(original) * lines(revised)) this package is
// meant for. Compute does not refuse larger inputs; callers previewing big files should
// check TooLarge and warn instead.
const MaxCells = 4_000_000

// TooLarge reports whether diffing the two texts exceeds MaxCells.
func TooLarge(original, revised string) bool {
	n := strings.Count(original, "\n") + 1
	m := strings.Count(revised, "\n") + 1
	return n*m > MaxCells
}

// Compute returns the edit script turning original into revised, top to bottom.
//
// Identical inputs return nil. Otherwise both texts are split on "\n" (a trailing
// newline yields a trailing empty line) and a longest-common-subsequence table is
// built in O(n*m) time and space. When backtracking, an addition is preferred over
// a removal if both keep the LCS length, so a replaced line shows as "-old" then "+new".
func Compute(original, revised string) []Line {
	if original == revised {
		return nil
	}

	a := strings.Split(original, "\n")
	b := strings.Split(revised, "\n")
	n, m := len(a), len(b)

	// table[i][j] = LCS length of a[:i] and b[:j]
	table := make([][]int, n+1)
	for i := range table {
		table[i] = make([]int, m+1)
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if a[i-1] == b[j-1] {
				table[i][j] = table[i-1][j-1] + 1
			} else if table[i-1][j] >= table[i][j-1] {
				table[i][j] = table[i-1][j]
			} else {
				table[i][j] = table[i][j-1]
			}
		}
	}

	// Every step emits one line, so the script has exactly n+m-lcs entries.
	out := make([]Line, n+m-table[n][m])
	k := len(out)
	i, j := n, m
	for i > 0 || j > 0 {
		k--
		switch {
		case i > 0 && j > 0 && a[i-1] == b[j-1]:
			out[k] = Line{Type: Unchanged, Text: a[i-1]}
			i--
			j--
		case j > 0 && (i == 0 || table[i][j-1] >= table[i-1][j]):
			out[k] = Line{Type: Added, Text: b[j-1]}
			j--
		default:
			out[k] = Line{Type: Removed, Text: a[i-1]}
			i--
		}
	}
	return out
}

// Render joins the lines in display form, one per row.
func Render(lines []Line) string {
	var sb strings.Builder
	for i, l := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(l.String())
	}
	return sb.String()
}

// Stats counts added and removed lines.
func Stats(lines []Line) (added, removed int) {
	for _, l := range lines {
		switch l.Type {
		case Added:
			added++
		case Removed:
			removed++
		}
	}
	return added, removed
}

// ApplyOriginal rebuilds the original text from a script (every line that is not an addition).
func ApplyOriginal(lines []Line) string {
	return join(lines, Added)
}

// ApplyRevised rebuilds the revised text from a script (every line that is not a removal).
func ApplyRevised(lines []Line) string {
	return join(lines, Removed)
}

func join(lines []Line, skip LineType) string {
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		if l.Type != skip {
			kept = append(kept, l.Text)
		}
	}
	return strings.Join(kept, "\n")
}
