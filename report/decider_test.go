package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDateDecider_ScoreCell(t *testing.T) {
	d := DateDecider{}

	testCases := []struct {
		name     string
		cell     string
		expected float64
	}{
		{"empty cell scores zero", "", 0},
		{"whitespace only scores zero", "   ", 0},
		{"unrelated text scores zero", "Rent collected", 0},
		{"slash date scores at least one", "9/17/2020", 1},
		{"month-prefixed date scores higher", "SEP 17", 2},
		{"abbreviated month anywhere in text scores", "total for sep", 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			score := d.ScoreCell(tc.cell)
			if tc.expected == 0 {
				assert.Equal(t, float64(0), score)
			} else {
				assert.GreaterOrEqual(t, score, tc.expected)
			}
		})
	}
}

func TestTitleDecider_ScoreCell(t *testing.T) {
	d := TitleDecider{}

	testCases := []struct {
		name     string
		cell     string
		expected float64
	}{
		{"empty cell scores zero", "", 0},
		{"digit-led cell scores negative", "123 Main St", -1},
		{"text label scores zero", "Discount/Promotion", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, d.ScoreCell(tc.cell))
		})
	}
}

func TestScoreEntries(t *testing.T) {
	slices := [][]string{
		{"Unit 1", "Unit 2"},
		{"JAN 17", "FEB 17"},
		{"", ""},
	}

	scores, top := scoreEntries(slices, DateDecider{}, true)
	assert.Len(t, scores, 3)
	assert.Equal(t, []int{1}, top, "only the month-labeled slice should score positively")
}

func TestScoreEntries_NonStrictAllowsZeroMaxToWin(t *testing.T) {
	slices := [][]string{
		{"100", "200"},
		{"Name", "Other"},
	}

	scores, top := scoreEntries(slices, TitleDecider{}, false)
	assert.Equal(t, []float64{-1, 0}, scores)
	assert.Equal(t, []int{1}, top)
}
