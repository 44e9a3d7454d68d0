package report

import (
	"encoding/csv"
	"io"
	"os"
)

// AxisDecision is the inferred assignment of Date and Title roles to a
// report's two axes, with the offsets at which their labels live.
type AxisDecision struct {
	Path       string
	DateAxis   AxisKind
	DateIndex  int
	TitleAxis  AxisKind
	TitleIndex int
}

// Decide loads path as CSV and infers its date and title axes. It fails
// with *AxisInferenceError if no axis scores positively for dates; title
// inference falls back silently to the opposite axis at offset 0.
func Decide(path string) (*AxisDecision, error) {
	rows, cols, err := indexValues(path)
	if err != nil {
		return nil, err
	}

	dateAxis, dateIndex := findAxis(rows, cols, DateDecider{}, true)
	if dateAxis == AxisNone {
		return nil, &AxisInferenceError{Path: path, Reason: "no axis scored positively for dates"}
	}

	titleAxis, titleIndex := findAxis(rows, cols, TitleDecider{}, false)
	if titleAxis == AxisNone {
		titleAxis = dateAxis.Opposite()
		titleIndex = 0
	}

	// Post-fix: date inference is authoritative.
	if titleAxis == dateAxis {
		titleAxis = dateAxis.Opposite()
	}

	return &AxisDecision{
		Path:       path,
		DateAxis:   dateAxis,
		DateIndex:  dateIndex,
		TitleAxis:  titleAxis,
		TitleIndex: titleIndex,
	}, nil
}

// findAxis combines a row-oriented and column-oriented scan of decider
// against the report. When both claim an axis, the one whose top slice
// scores higher wins; ties prefer Row.
func findAxis(rows, cols [][]string, decider Decider, strictlyPositive bool) (AxisKind, int) {
	rowScores, rowTop, rowOk := isAxis(rows, decider, strictlyPositive)
	colScores, colTop, colOk := isAxis(cols, decider, strictlyPositive)

	switch {
	case rowOk && colOk:
		if rowScores[rowTop[0]] >= colScores[colTop[0]] {
			return AxisRow, rowTop[0]
		}
		return AxisColumn, colTop[0]
	case rowOk:
		return AxisRow, rowTop[0]
	case colOk:
		return AxisColumn, colTop[0]
	default:
		return AxisNone, 0
	}
}

// indexValues reads path as CSV and returns both orthogonal views of the
// same data: rows (one slice of cell text per row) and cols (the transpose,
// one slice per column).
func indexValues(path string) (rows [][]string, cols [][]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &IOError{Path: path, Err: err}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var width int
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, &IOError{Path: path, Err: err}
		}
		rows = append(rows, record)
		if len(record) > width {
			width = len(record)
		}
	}

	cols = make([][]string, width)
	for _, row := range rows {
		for i := 0; i < width; i++ {
			if i < len(row) {
				cols[i] = append(cols[i], row[i])
			} else {
				cols[i] = append(cols[i], "")
			}
		}
	}

	return rows, cols, nil
}
