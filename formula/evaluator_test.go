package formula

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportforms/report"
)

func writeReport(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const cashflowCSV = ",JAN 17,FEB 17,MAR 17,APR 17,MAY 17,JUN 17,JUL 17,AUG 17,SEP 17,OCT 17,NOV 17,DEC 17,JAN 18,FEB 18\n" +
	"Revenue,100,110,120,130,140,150,160,170,180,190,200,210,220,230\n" +
	"Discount/Promotion,5,6,7,8,9,10,11,12,13,14,15,16,17,18\n" +
	"Expenses,50,55,60,65,70,75,80,85,90,95,100,105,110,115\n"

func newEvaluator(t *testing.T, paths ...string) *Evaluator {
	t.Helper()
	traversers := make([]*report.ReportTraverser, len(paths))
	for i, p := range paths {
		decision, err := report.Decide(p)
		require.NoError(t, err)
		traversers[i] = report.NewReportTraverser(p, decision)
	}
	return NewEvaluator(traversers...)
}

func evalScalar(t *testing.T, e *Evaluator, formula string) report.Cell {
	t.Helper()
	res, err := e.EvaluateFormula(formula, false)
	require.NoError(t, err)
	return res.Scalar
}

func TestEvaluate_Add(t *testing.T) {
	e := NewEvaluator()
	cell := evalScalar(t, e, "Add(2,1)")
	assert.Equal(t, report.CellNumber, cell.Value.Kind)
	assert.Equal(t, 3.0, cell.Value.Number)
}

func TestEvaluate_Average(t *testing.T) {
	e := NewEvaluator()
	cell := evalScalar(t, e, "Average(1,2,3)")
	assert.Equal(t, 2.0, cell.Value.Number)
}

func TestEvaluate_Round(t *testing.T) {
	e := NewEvaluator()
	cell := evalScalar(t, e, "Round(2.156,2)")
	assert.Equal(t, 2.16, cell.Value.Number)
}

func TestEvaluate_IfElse(t *testing.T) {
	e := NewEvaluator()
	cell := evalScalar(t, e, "IfElse(GreaterThan(2,1),1,-1)")
	assert.Equal(t, report.CellText, cell.Value.Kind)
	assert.Equal(t, "1", cell.Value.Text)

	cell = evalScalar(t, e, "IfElse(GreaterThan(1,2),1,-1)")
	assert.Equal(t, report.CellText, cell.Value.Kind)
	assert.Equal(t, "-1", cell.Value.Text)
}

func TestEvaluate_FloorArityError(t *testing.T) {
	e := NewEvaluator()
	_, err := e.EvaluateFormula("Floor(1.1,2.1)", false)
	require.Error(t, err)
	var arityErr *ArityError
	assert.ErrorAs(t, err, &arityErr)
}

func TestEvaluate_UnknownFunction(t *testing.T) {
	e := NewEvaluator()
	_, err := e.EvaluateFormula("IDONTEXIST()", false)
	require.Error(t, err)
	var unknownErr *UnknownFunctionError
	assert.ErrorAs(t, err, &unknownErr)
}

func TestEvaluate_CashflowCountDates(t *testing.T) {
	path := writeReport(t, cashflowCSV)
	e := newEvaluator(t, path)

	cell := evalScalar(t, e, "Count(get_dates(0))")
	assert.Equal(t, 14.0, cell.Value.Number, "Count must not numeric-cast date labels, or all 14 would be dropped")
}

func TestEvaluate_CashflowAverageBySeptember(t *testing.T) {
	path := writeReport(t, cashflowCSV)
	e := newEvaluator(t, path)

	// September column: Revenue=180, Discount/Promotion=13, Expenses=90.
	cell := evalScalar(t, e, "Ceiling(Average(get_cells_by_date(0, SEP 17)))")
	assert.Equal(t, float64(95), cell.Value.Number)
}

func TestEvaluate_GetCellsByTitleAnnotations(t *testing.T) {
	path := writeReport(t, cashflowCSV)
	e := newEvaluator(t, path)

	res, err := e.EvaluateFormula("get_cells_by_title(0,Discount/Promotion)", true)
	require.NoError(t, err)
	require.True(t, res.IsVector)
	require.Len(t, res.Vector, 14)
	for _, c := range res.Vector {
		require.NotNil(t, c.Title)
		assert.Equal(t, "Discount/Promotion", c.Title.Value.Text)
	}
	assert.Equal(t, "JAN 17", res.Vector[0].Date.Value.Text)
	assert.Equal(t, "FEB 18", res.Vector[13].Date.Value.Text)
}

func TestEvaluate_TwoTraversersSameFile(t *testing.T) {
	path := writeReport(t, cashflowCSV)
	e := newEvaluator(t, path, path)

	// traverser 0: Expenses (title 2) at NOV 17 (date 10) = 100.
	// traverser 1: Discount/Promotion (title 1) at APR 17 (date 3) = 8.
	cell := evalScalar(t, e, "Add(get_cell_by_index(0,2,10), get_cell_by_index(1,1,3))")
	assert.Equal(t, 108.0, cell.Value.Number)
}

func TestEvaluate_GetCellByIndexNegativeIsAbsent(t *testing.T) {
	path := writeReport(t, cashflowCSV)
	e := newEvaluator(t, path)

	res, err := e.EvaluateFormula("get_cell_by_index(0,-1,0)", false)
	require.NoError(t, err)
	assert.Equal(t, report.CellAbsent, res.Scalar.Value.Kind)
}

func TestEvaluate_OutOfRangeTraverserIndex(t *testing.T) {
	path := writeReport(t, cashflowCSV)
	e := newEvaluator(t, path)

	_, err := e.EvaluateFormula("get_dates(5)", true)
	require.Error(t, err)
	var argErr *ArgumentError
	assert.ErrorAs(t, err, &argErr)
}

func TestEvaluate_VectorAddBroadcast(t *testing.T) {
	e := NewEvaluator()
	// The vector arguments come from nested get_cells_by_title bindings; both
	// have 14 entries, so the sum is element-wise with no zero padding.
	path := writeReport(t, cashflowCSV)
	e = newEvaluator(t, path)

	res, err := e.EvaluateFormula(
		"VectorAdd(get_cells_by_title(0,Revenue), get_cells_by_title(0,Expenses))", true)
	require.NoError(t, err)
	require.Len(t, res.Vector, 14)
	assert.Equal(t, 150.0, res.Vector[0].Value.Number) // 100 + 50
	assert.Equal(t, 345.0, res.Vector[13].Value.Number) // 230 + 115
}
