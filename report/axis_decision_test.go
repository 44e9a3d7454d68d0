package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDecide_RowDatesColumnTitles(t *testing.T) {
	path := writeCSV(t, ","+"JAN 17,FEB 17,MAR 17\nUnit 1,100,200,300\nUnit 2,400,500,600\n")

	decision, err := Decide(path)
	require.NoError(t, err)

	assert.Equal(t, AxisRow, decision.DateAxis)
	assert.Equal(t, 0, decision.DateIndex)
	assert.Equal(t, AxisColumn, decision.TitleAxis)
	assert.Equal(t, 0, decision.TitleIndex)
}

func TestDecide_NoDateAxis(t *testing.T) {
	path := writeCSV(t, "Unit 1,Unit 2\n100,200\n300,400\n")

	_, err := Decide(path)
	require.Error(t, err)
	var axisErr *AxisInferenceError
	assert.ErrorAs(t, err, &axisErr)
}

func TestDecide_TitleAxisFallsBackWhenUnclaimed(t *testing.T) {
	// Every non-date cell is numeric, so the title decider claims no axis and
	// decide() falls back to the opposite of the date axis at offset 0.
	path := writeCSV(t, "1,JAN 17,FEB 17\n2,10,20\n3,30,40\n")

	decision, err := Decide(path)
	require.NoError(t, err)

	assert.Equal(t, AxisRow, decision.DateAxis)
	assert.Equal(t, decision.DateAxis.Opposite(), decision.TitleAxis)
	assert.Equal(t, 0, decision.TitleIndex)
}

func TestIndexValues_RowsAndColumnsAreTransposes(t *testing.T) {
	path := writeCSV(t, "a,b\nc,d\n")

	rows, cols, err := indexValues(path)
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}}, rows)
	assert.Equal(t, [][]string{{"a", "c"}, {"b", "d"}}, cols)
}

func TestIndexValues_MissingFile(t *testing.T) {
	_, _, err := indexValues(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	var ioErr *IOError
	assert.ErrorAs(t, err, &ioErr)
}
