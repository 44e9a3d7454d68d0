package report

import (
	"regexp"
	"strings"
)

var titleNegativePattern = regexp.MustCompile(`^\d+`)

// TitleDecider scores cells that look like row/column titles by penalizing
// cells that start with digits — a title axis is the one whose cells look
// least like data. Net negative scores are legal; the slice with the
// highest score wins, provided that score is not negative (see
// scoreEntries). When every slice scores negative, no slice wins.
type TitleDecider struct{}

// ScoreCell implements Decider.
func (TitleDecider) ScoreCell(cell string) float64 {
	if strings.TrimSpace(cell) == "" {
		return 0
	}
	if titleNegativePattern.MatchString(cell) {
		return -1
	}
	return 0
}
