package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cashflowFixture(t *testing.T) (*ReportTraverser, string) {
	t.Helper()
	path := writeCSV(t, ","+"JAN 17,FEB 17,MAR 17\nUnit 1,100,200,300\nUnit 2,400,500,600\n")
	decision, err := Decide(path)
	require.NoError(t, err)
	return NewReportTraverser(path, decision), path
}

func TestReportTraverser_GetDatesAndTitles(t *testing.T) {
	tr, _ := cashflowFixture(t)

	dates, err := tr.GetDates()
	require.NoError(t, err)
	require.Len(t, dates, 3)
	assert.Equal(t, []string{"JAN 17", "FEB 17", "MAR 17"},
		[]string{dates[0].Value.Text, dates[1].Value.Text, dates[2].Value.Text})

	titles, err := tr.GetTitles()
	require.NoError(t, err)
	require.Len(t, titles, 2)
	assert.Equal(t, []string{"Unit 1", "Unit 2"},
		[]string{titles[0].Value.Text, titles[1].Value.Text})
}

func TestReportTraverser_GetCellByIndex(t *testing.T) {
	tr, _ := cashflowFixture(t)

	testCases := []struct {
		name       string
		titleIndex int
		dateIndex  int
		wantValue  string
		wantTitle  string
		wantDate   string
	}{
		{"first data cell", 0, 0, "100", "Unit 1", "JAN 17"},
		{"second row, third column", 1, 2, "600", "Unit 2", "MAR 17"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cell, err := tr.GetCellByIndex(tc.titleIndex, tc.dateIndex)
			require.NoError(t, err)
			assert.Equal(t, tc.wantValue, cell.Value.Text)
			require.NotNil(t, cell.Title)
			assert.Equal(t, tc.wantTitle, cell.Title.Value.Text)
			require.NotNil(t, cell.Date)
			assert.Equal(t, tc.wantDate, cell.Date.Value.Text)
		})
	}
}

func TestReportTraverser_GetCellByIndex_NegativeIsAbsentNotError(t *testing.T) {
	tr, _ := cashflowFixture(t)

	cell, err := tr.GetCellByIndex(-1, 0)
	require.NoError(t, err)
	assert.Equal(t, CellAbsent, cell.Value.Kind)
}

func TestReportTraverser_GetCellByText(t *testing.T) {
	tr, _ := cashflowFixture(t)

	cell, err := tr.GetCellByText("Unit 2", "FEB 17")
	require.NoError(t, err)
	assert.Equal(t, "500", cell.Value.Text)

	absent, err := tr.GetCellByText("No Such Unit", "FEB 17")
	require.NoError(t, err)
	assert.Equal(t, CellAbsent, absent.Value.Kind)
}

func TestReportTraverser_GetCellsByDate(t *testing.T) {
	tr, _ := cashflowFixture(t)

	cells, err := tr.GetCellsByDate("FEB 17")
	require.NoError(t, err)
	require.Len(t, cells, 2)
	assert.Equal(t, "200", cells[0].Value.Text)
	assert.Equal(t, "500", cells[1].Value.Text)
	for _, c := range cells {
		assert.Equal(t, "FEB 17", c.Date.Value.Text)
	}
	assert.Equal(t, "Unit 1", cells[0].Title.Value.Text)
	assert.Equal(t, "Unit 2", cells[1].Title.Value.Text)
}

func TestReportTraverser_GetCellsByTitle(t *testing.T) {
	tr, _ := cashflowFixture(t)

	cells, err := tr.GetCellsByTitle("Unit 2")
	require.NoError(t, err)
	require.Len(t, cells, 3)
	assert.Equal(t, []string{"400", "500", "600"},
		[]string{cells[0].Value.Text, cells[1].Value.Text, cells[2].Value.Text})
	for _, c := range cells {
		assert.Equal(t, "Unit 2", c.Title.Value.Text)
	}
	assert.Equal(t, []string{"JAN 17", "FEB 17", "MAR 17"},
		[]string{cells[0].Date.Value.Text, cells[1].Date.Value.Text, cells[2].Date.Value.Text})
}

func TestReportTraverser_GetCellsByDate_UnresolvedIsEmpty(t *testing.T) {
	tr, _ := cashflowFixture(t)

	cells, err := tr.GetCellsByDate("DEC 99")
	require.NoError(t, err)
	assert.Nil(t, cells)
}

func TestReportTraverser_LoadsFileOnce(t *testing.T) {
	tr, path := cashflowFixture(t)
	_ = path

	_, err := tr.GetDates()
	require.NoError(t, err)
	firstMatrix := tr.matrix

	_, err = tr.GetTitles()
	require.NoError(t, err)
	assert.Same(t, &firstMatrix[0], &tr.matrix[0], "matrix should be materialized once and reused")
}
