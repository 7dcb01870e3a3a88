package text

import "strings"

// Normalize canonicalizes line terminators to "\n", strips trailing
// horizontal whitespace before each newline, and terminates non-empty text
// with a final newline, so a diff against normalized text reflects only
// substantive content changes. The buffer is a line list that cannot
// represent a missing final terminator, so without the terminating rule a
// remote file ending mid-line would diff as permanently divergent.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	s = strings.Join(lines, "\n")
	if s != "" && !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s
}

// SplitLines splits text by newline and removes the trailing empty element
// if present
func SplitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// JoinLines joins buffer lines back into text. Each line gets a trailing
// \n, which matches how the differ counts lines:
// - ["a", "b"] → "a\nb\n" (2 lines)
// - ["a", ""] → "a\n\n" (2 lines, second is empty)
func JoinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
