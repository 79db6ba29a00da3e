package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const minRunLength = 4

// extractDOC recovers readable runs from a legacy Word binary. Word stores
// text either as 8-bit characters or as UTF-16LE, so both are scanned and
// the richer reading wins. Formatting and field codes are lost.
func extractDOC(content []byte) string {
	narrow := joinRuns(narrowRuns(content))
	wide := joinRuns(wideRuns(content))
	if utf8.RuneCountInString(wide) > utf8.RuneCountInString(narrow) {
		return wide
	}
	return narrow
}

func narrowRuns(content []byte) []string {
	var (
		runs []string
		cur  []rune
	)
	for _, c := range content {
		r := rune(c)
		if isTextRune(r) {
			cur = append(cur, r)
			continue
		}
		runs = appendRun(runs, cur)
		cur = cur[:0]
	}
	return appendRun(runs, cur)
}

func wideRuns(content []byte) []string {
	var (
		runs []string
		cur  []rune
	)
	for i := 0; i+1 < len(content); i += 2 {
		r := rune(content[i]) | rune(content[i+1])<<8
		if isTextRune(r) {
			cur = append(cur, r)
			continue
		}
		runs = appendRun(runs, cur)
		cur = cur[:0]
	}
	return appendRun(runs, cur)
}

func isTextRune(r rune) bool {
	if r == '\r' || r == '\n' || r == '\t' {
		return true
	}
	if r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0) {
		return false
	}
	return unicode.IsPrint(r)
}

// appendRun keeps runs long enough to be words and containing a letter.
func appendRun(runs []string, cur []rune) []string {
	if len(cur) < minRunLength {
		return runs
	}
	s := strings.TrimSpace(string(cur))
	if len([]rune(s)) < minRunLength || strings.IndexFunc(s, unicode.IsLetter) < 0 {
		return runs
	}
	return append(runs, s)
}

func joinRuns(runs []string) string {
	return strings.Join(runs, "\n")
}
