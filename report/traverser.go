package report

import (
	"encoding/csv"
	"io"
	"os"
	"sync"
)

// ReportTraverser answers positional and label-based cell lookups over a
// CSV given an AxisDecision. It is immutable after construction and
// conceptually re-reads the file on each query; this implementation
// honors that contract observably while lazily materializing the parsed
// matrix once behind a sync.Once.
type ReportTraverser struct {
	Path       string
	DateAxis   AxisKind
	DateIndex  int
	TitleAxis  AxisKind
	TitleIndex int

	once    sync.Once
	matrix  [][]string
	loadErr error
}

// NewReportTraverser constructs a traverser from a path and an AxisDecision.
// Both DateAxis and TitleAxis must be non-None and distinct.
func NewReportTraverser(path string, decision *AxisDecision) *ReportTraverser {
	return &ReportTraverser{
		Path:       path,
		DateAxis:   decision.DateAxis,
		DateIndex:  decision.DateIndex,
		TitleAxis:  decision.TitleAxis,
		TitleIndex: decision.TitleIndex,
	}
}

func (t *ReportTraverser) load() ([][]string, error) {
	t.once.Do(func() {
		f, err := os.Open(t.Path)
		if err != nil {
			t.loadErr = &IOError{Path: t.Path, Err: err}
			return
		}
		defer f.Close()

		reader := csv.NewReader(f)
		reader.FieldsPerRecord = -1

		var rows [][]string
		var width int
		for {
			record, err := reader.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.loadErr = &IOError{Path: t.Path, Err: err}
				return
			}
			rows = append(rows, record)
			if len(record) > width {
				width = len(record)
			}
		}
		t.matrix = rows
	})
	return t.matrix, t.loadErr
}

func (t *ReportTraverser) dataStart() int {
	start := t.DateIndex
	if t.TitleIndex > start {
		start = t.TitleIndex
	}
	return start + 1
}

func cellAt(matrix [][]string, row, col int) (string, bool) {
	if row < 0 || row >= len(matrix) {
		return "", false
	}
	if col < 0 || col >= len(matrix[row]) {
		return "", false
	}
	return matrix[row][col], true
}

// getLabels scans the label row/column for axis (the row at axisIndex if
// axis is AxisRow, the column at axisIndex if axis is AxisColumn), starting
// just past otherAxisIndex — "logical index 0" is the first entry at
// otherAxisIndex+1.
func getLabels(matrix [][]string, axis AxisKind, axisIndex, otherAxisIndex int) []Cell {
	start := otherAxisIndex + 1
	var labels []Cell

	switch axis {
	case AxisRow:
		if axisIndex < 0 || axisIndex >= len(matrix) {
			return nil
		}
		row := matrix[axisIndex]
		for col := start; col < len(row); col++ {
			labels = append(labels, NewTextCell(row[col]))
		}
	case AxisColumn:
		for row := start; row < len(matrix); row++ {
			text, ok := cellAt(matrix, row, axisIndex)
			if !ok {
				continue
			}
			labels = append(labels, NewTextCell(text))
		}
	}
	return labels
}

// GetDates returns the ordered sequence of date-label Cells; annotations
// are absent.
func (t *ReportTraverser) GetDates() ([]Cell, error) {
	matrix, err := t.load()
	if err != nil {
		return nil, err
	}
	return getLabels(matrix, t.DateAxis, t.DateIndex, t.TitleIndex), nil
}

// GetTitles returns the ordered sequence of title-label Cells; annotations
// are absent.
func (t *ReportTraverser) GetTitles() ([]Cell, error) {
	matrix, err := t.load()
	if err != nil {
		return nil, err
	}
	return getLabels(matrix, t.TitleAxis, t.TitleIndex, t.DateIndex), nil
}

// GetCellByIndex returns the Cell at the given logical (titleIndex,
// dateIndex) position, annotated with the label Cells at those indices.
// A negative index yields an absent Cell rather than an error.
func (t *ReportTraverser) GetCellByIndex(titleIndex, dateIndex int) (Cell, error) {
	if titleIndex < 0 || dateIndex < 0 {
		return AbsentCell, nil
	}

	matrix, err := t.load()
	if err != nil {
		return Cell{}, err
	}

	start := t.dataStart()
	var row, col int
	if t.DateAxis == AxisColumn {
		row = start + dateIndex
		col = start + titleIndex
	} else {
		row = start + titleIndex
		col = start + dateIndex
	}

	text, ok := cellAt(matrix, row, col)
	if !ok {
		return AbsentCell, nil
	}

	cell := NewTextCell(text)

	titles := getLabels(matrix, t.TitleAxis, t.TitleIndex, t.DateIndex)
	if titleIndex < len(titles) {
		title := titles[titleIndex]
		cell.Title = &title
	}
	dates := getLabels(matrix, t.DateAxis, t.DateIndex, t.TitleIndex)
	if dateIndex < len(dates) {
		date := dates[dateIndex]
		cell.Date = &date
	}

	return cell, nil
}

func indexOfLabel(labels []Cell, text string) int {
	for i, l := range labels {
		if l.Value.Text == text {
			return i
		}
	}
	return -1
}

// GetCellByText resolves titleText and dateText to their logical indices
// and delegates to GetCellByIndex. Unresolved text yields an absent Cell.
func (t *ReportTraverser) GetCellByText(titleText, dateText string) (Cell, error) {
	titles, err := t.GetTitles()
	if err != nil {
		return Cell{}, err
	}
	dates, err := t.GetDates()
	if err != nil {
		return Cell{}, err
	}

	titleIndex := indexOfLabel(titles, titleText)
	dateIndex := indexOfLabel(dates, dateText)
	if titleIndex < 0 || dateIndex < 0 {
		return AbsentCell, nil
	}
	return t.GetCellByIndex(titleIndex, dateIndex)
}

// GetCellsByDate returns the sequence of Cells along the title axis at the
// given date label, each annotated with its own title and the shared date.
// Unresolved date text yields an empty sequence.
func (t *ReportTraverser) GetCellsByDate(dateText string) ([]Cell, error) {
	dates, err := t.GetDates()
	if err != nil {
		return nil, err
	}
	dateIndex := indexOfLabel(dates, dateText)
	if dateIndex < 0 {
		return nil, nil
	}

	titles, err := t.GetTitles()
	if err != nil {
		return nil, err
	}

	cells := make([]Cell, 0, len(titles))
	for titleIndex := range titles {
		cell, err := t.GetCellByIndex(titleIndex, dateIndex)
		if err != nil {
			return nil, err
		}
		cells = append(cells, cell)
	}
	return cells, nil
}

// GetCellsByTitle is the symmetric counterpart of GetCellsByDate.
func (t *ReportTraverser) GetCellsByTitle(titleText string) ([]Cell, error) {
	titles, err := t.GetTitles()
	if err != nil {
		return nil, err
	}
	titleIndex := indexOfLabel(titles, titleText)
	if titleIndex < 0 {
		return nil, nil
	}

	dates, err := t.GetDates()
	if err != nil {
		return nil, err
	}

	cells := make([]Cell, 0, len(dates))
	for dateIndex := range dates {
		cell, err := t.GetCellByIndex(titleIndex, dateIndex)
		if err != nil {
			return nil, err
		}
		cells = append(cells, cell)
	}
	return cells, nil
}
