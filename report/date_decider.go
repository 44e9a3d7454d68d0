package report

import (
	"regexp"
	"strings"
)

var months1 = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

var months2 = []string{
	"jan", "feb", "mar", "apr", "may", "jun",
	"jul", "aug", "sep", "oct", "nov", "dec",
}

// datePattern is one regex the date decider scores a cell against: anyRe
// matches anywhere in the text (score 1), prefixRe anchors at the start
// (score 2, supersedes anyRe).
type datePattern struct {
	prefixRe *regexp.Regexp
	anyRe    *regexp.Regexp
}

func newDatePattern(body string) datePattern {
	return datePattern{
		prefixRe: regexp.MustCompile(`^(?i)` + body),
		anyRe:    regexp.MustCompile(`(?i)` + body),
	}
}

func (p datePattern) score(cell string) float64 {
	if p.prefixRe.MatchString(cell) {
		return 2
	}
	if p.anyRe.MatchString(cell) {
		return 1
	}
	return 0
}

var datePatterns = buildDatePatterns()

func buildDatePatterns() []datePattern {
	patterns := []datePattern{
		newDatePattern(`(\d+/\d+/\d+)`),
	}
	for _, months := range [][]string{months1, months2} {
		for _, month := range months {
			patterns = append(patterns,
				newDatePattern(`(`+month+` \d+)`),
				newDatePattern(`(.*`+month+`.*)`),
			)
		}
	}
	return patterns
}

// DateDecider scores cells that look like a date label: an unformatted
// numeric date (d/m/y), or a month name (full or three-letter, either
// month set). A month name followed by a number matches two patterns;
// a month name anywhere in the text, with no number, still matches one.
type DateDecider struct{}

// ScoreCell implements Decider.
func (DateDecider) ScoreCell(cell string) float64 {
	if strings.TrimSpace(cell) == "" {
		return 0
	}
	var total float64
	for _, p := range datePatterns {
		total += p.score(cell)
	}
	return total
}
