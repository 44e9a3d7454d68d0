package report

// Decider scores a single cell's text; axis inference sums these per-slice
// to find which row or column carries a given role (date, title, ...).
// This is the idiomatic-Go rendering of the original's template-method base
// class: Go has no inheritance, so the per-slice aggregation that class
// provided lives in the free function scoreEntries below instead.
type Decider interface {
	ScoreCell(cell string) float64
}

// scoreEntries computes, for each slice (one row or one column of cell
// text), the average of ScoreCell across its cells, then returns the
// indices whose score ties the maximum — provided that maximum clears the
// gate: strictly positive when strictlyPositive is set (the date decider),
// otherwise merely non-negative.
func scoreEntries(slices [][]string, decider Decider, strictlyPositive bool) (scores []float64, topIndexes []int) {
	scores = make([]float64, len(slices))
	for i, slice := range slices {
		if len(slice) == 0 {
			continue
		}
		var sum float64
		for _, cell := range slice {
			sum += decider.ScoreCell(cell)
		}
		scores[i] = sum / float64(len(slice))
	}

	if len(scores) == 0 {
		return scores, nil
	}

	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}

	gatePasses := max > 0
	if !strictlyPositive {
		gatePasses = max >= 0
	}
	if !gatePasses {
		return scores, nil
	}

	for i, s := range scores {
		if s == max {
			topIndexes = append(topIndexes, i)
		}
	}
	return scores, topIndexes
}

// isAxis reports whether a decider's top score clears its gate for at least
// one slice.
func isAxis(slices [][]string, decider Decider, strictlyPositive bool) (scores []float64, topIndexes []int, ok bool) {
	scores, topIndexes = scoreEntries(slices, decider, strictlyPositive)
	return scores, topIndexes, len(topIndexes) > 0
}
