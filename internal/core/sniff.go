package core

import "strings"

// SniffSampleSize is how much of a source is inspected to guess its delimiter.
const SniffSampleSize = 1024

// DefaultDelimiter is returned whenever sniffing is inconclusive.
const DefaultDelimiter = ','

// delimiterCandidates in preference order.
var delimiterCandidates = []rune{',', ';', '\t', '|'}

// minConsistency is the share of lines that must agree on a delimiter count.
const minConsistency = 0.9

// SniffDelimiter guesses the field delimiter of a CSV sample. Only the first
// SniffSampleSize bytes are inspected; pass at least one byte more when the
// source is longer so a cut-off last line can be recognized. For every
// candidate it counts occurrences outside double quotes on each line; the
// candidate whose count is the same on most lines wins. It never fails:
// empty, single-column or ambiguous samples yield DefaultDelimiter.
func SniffDelimiter(sample string) rune {
	lines := sampleLines(sample)
	if len(lines) == 0 {
		return DefaultDelimiter
	}

	best := DefaultDelimiter
	bestScore, bestMode := 0.0, 0
	for _, d := range delimiterCandidates {
		mode, score := delimiterScore(lines, d)
		if mode == 0 || score < minConsistency {
			continue
		}
		if score > bestScore || (score == bestScore && mode > bestMode) {
			best, bestScore, bestMode = d, score, mode
		}
	}
	return best
}

// sampleLines splits the sniff window of src into non-empty lines. The last
// line is dropped only when src continues past the window mid-line.
func sampleLines(src string) []string {
	sample := src
	truncated := false
	if len(src) > SniffSampleSize {
		sample = src[:SniffSampleSize]
		next := src[SniffSampleSize]
		truncated = !strings.HasSuffix(sample, "\n") && next != '\n' && next != '\r'
	}

	raw := strings.Split(strings.ReplaceAll(sample, "\r\n", "\n"), "\n")
	if truncated && len(raw) > 1 {
		raw = raw[:len(raw)-1]
	}

	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// delimiterScore returns the modal per-line count of d and the share of
// lines having exactly that count.
func delimiterScore(lines []string, d rune) (mode int, score float64) {
	freq := make(map[int]int)
	for _, l := range lines {
		freq[countUnquoted(l, d)]++
	}
	for count, n := range freq {
		if n > freq[mode] || (n == freq[mode] && count > mode) {
			mode = count
		}
	}
	return mode, float64(freq[mode]) / float64(len(lines))
}

func countUnquoted(line string, d rune) int {
	n := 0
	quoted := false
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
		case r == d && !quoted:
			n++
		}
	}
	return n
}
