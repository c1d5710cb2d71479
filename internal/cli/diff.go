package cli

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// diffContext is the number of unchanged lines shown around a change
const diffContext = 3

// DiffLine is one line of a line diff
type DiffLine struct {
	Op   diffmatchpatch.Operation
	Text string
}

// Prefix returns the marker printed before the line
func (l DiffLine) Prefix() string {
	switch l.Op {
	case diffmatchpatch.DiffInsert:
		return "+"
	case diffmatchpatch.DiffDelete:
		return "-"
	default:
		return " "
	}
}

// DiffLines compares two texts line by line
func DiffLines(oldText, newText string) []DiffLine {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []DiffLine
	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			out = append(out, DiffLine{Op: d.Type, Text: line})
		}
	}
	return out
}

// UnifiedDiff renders the changes between oldText and newText with a few
// lines of context. It returns "" when the texts are equal.
func UnifiedDiff(oldName, newName, oldText, newText string) string {
	if oldText == newText {
		return ""
	}

	lines := DiffLines(oldText, newText)
	keep := make([]bool, len(lines))
	for i, line := range lines {
		if line.Op == diffmatchpatch.DiffEqual {
			continue
		}
		for j := max(0, i-diffContext); j <= min(len(lines)-1, i+diffContext); j++ {
			keep[j] = true
		}
	}

	var b strings.Builder
	b.WriteString("--- " + oldName + "\n")
	b.WriteString("+++ " + newName + "\n")
	skipped := false
	for i, line := range lines {
		if !keep[i] {
			skipped = true
			continue
		}
		if skipped {
			b.WriteString("@@\n")
			skipped = false
		}
		b.WriteString(line.Prefix() + line.Text + "\n")
	}
	return b.String()
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
