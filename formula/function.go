package formula

import (
	"math"
	"strconv"

	"reportforms/report"
)

// funcKind classifies how a function's arguments are gathered and how its
// implementation is invoked. IfElse is its own kind because its branch
// selection falls outside the scalar/vector/binding shapes of every other
// function: the evaluator handles it on a dedicated path that returns the
// chosen branch's result unchanged, so its list shape is kept as is.
type funcKind int

const (
	kindScalar funcKind = iota
	kindVector
	kindBinding
	kindIfElse
)

// arity describes an enforced argument count: either an exact count or a
// minimum for varargs. Functions absent from the registry are rejected as
// unknown before arity is ever considered.
type arity struct {
	exact int // -1 when not exact
	min   int // honored when exact == -1
}

func exactArity(n int) arity { return arity{exact: n, min: n} }
func minArity(n int) arity   { return arity{exact: -1, min: n} }

func (a arity) check(name string, got int) error {
	if a.exact >= 0 {
		if got != a.exact {
			return &ArityError{Name: name, Got: got, Want: strconv.Itoa(a.exact)}
		}
		return nil
	}
	if got < a.min {
		return &ArityError{Name: name, Got: got, Want: "at least " + strconv.Itoa(a.min)}
	}
	return nil
}

// bindingImpl calls a traverser method with the arguments that follow the
// traverser index. They arrive as text Cells; a binding that takes
// positional indices parses them itself.
type bindingImpl func(trav *report.ReportTraverser, args []report.Cell) ([]report.Cell, error)

type funcDef struct {
	kind    funcKind
	arity   arity
	scalar  func(args []report.Cell) (report.Cell, error)
	vector  func(vectors [][]report.Cell) ([]report.Cell, error)
	binding bindingImpl
	// numeric marks the arithmetic/comparison/aggregate functions whose
	// binding-sourced child arguments get cast to numeric Cells before
	// this function sees them, per the traverser binding semantics rule.
	// Count is deliberately excluded: it counts entries regardless of
	// their coercibility (Count(get_dates(...)) must count date labels,
	// which are never numeric).
	numeric bool
}

func reduceOp(op func(a, b float64) float64) func(args []report.Cell) (report.Cell, error) {
	return func(args []report.Cell) (report.Cell, error) {
		floats := make([]float64, len(args))
		for i, c := range args {
			f, err := report.CellToFloat(c)
			if err != nil {
				return report.Cell{}, err
			}
			floats[i] = f
		}
		acc := floats[0]
		for _, f := range floats[1:] {
			acc = op(acc, f)
		}
		return report.NewNumberCell(acc).WithAnnotations(args[0].Title, args[0].Date), nil
	}
}

func compareOp(op func(a, b float64) bool) func(args []report.Cell) (report.Cell, error) {
	return func(args []report.Cell) (report.Cell, error) {
		floats := make([]float64, len(args))
		for i, c := range args {
			f, err := report.CellToFloat(c)
			if err != nil {
				return report.Cell{}, err
			}
			floats[i] = f
		}
		ok := true
		for i := 1; i < len(floats); i++ {
			if !op(floats[i-1], floats[i]) {
				ok = false
				break
			}
		}
		result := 0.0
		if ok {
			result = 1.0
		}
		return report.NewNumberCell(result).WithAnnotations(args[0].Title, args[0].Date), nil
	}
}

func vectorOp(op func(a, b float64) float64) func(vectors [][]report.Cell) ([]report.Cell, error) {
	return func(vectors [][]report.Cell) ([]report.Cell, error) {
		maxLen := 0
		for _, v := range vectors {
			if len(v) > maxLen {
				maxLen = len(v)
			}
		}
		out := make([]report.Cell, maxLen)
		for i := 0; i < maxLen; i++ {
			var acc float64
			var title, date *report.Cell
			for vi, v := range vectors {
				var cell report.Cell
				if i < len(v) {
					cell = v[i]
				} else {
					cell = report.NewNumberCell(0)
				}
				f, err := report.CellToFloat(cell)
				if err != nil {
					return nil, err
				}
				if vi == 0 {
					acc = f
					title, date = cell.Title, cell.Date
				} else {
					acc = op(acc, f)
				}
			}
			out[i] = report.NewNumberCell(acc).WithAnnotations(title, date)
		}
		return out, nil
	}
}

func traverserIndexFromArg(c report.Cell, traversers []*report.ReportTraverser) (*report.ReportTraverser, error) {
	f, err := report.CellToFloat(c)
	if err != nil {
		return nil, &ArgumentError{Reason: "traverser index is not numeric: " + err.Error()}
	}
	idx := int(f)
	if idx < 0 || idx >= len(traversers) {
		return nil, &ArgumentError{Reason: "traverser index out of range: " + strconv.Itoa(idx)}
	}
	return traversers[idx], nil
}

var registry = map[string]funcDef{
	"Add":          {kind: kindScalar, arity: minArity(1), scalar: reduceOp(func(a, b float64) float64 { return a + b }), numeric: true},
	"Subtract":     {kind: kindScalar, arity: minArity(1), scalar: reduceOp(func(a, b float64) float64 { return a - b }), numeric: true},
	"Multiply":     {kind: kindScalar, arity: minArity(1), scalar: reduceOp(func(a, b float64) float64 { return a * b }), numeric: true},
	"Divide":       {kind: kindScalar, arity: minArity(1), scalar: reduceOp(func(a, b float64) float64 { return a / b }), numeric: true},
	"FloorDivide":  {kind: kindScalar, arity: minArity(1), scalar: reduceOp(func(a, b float64) float64 { return math.Floor(a / b) }), numeric: true},
	"GreaterThan":      {kind: kindScalar, arity: minArity(2), scalar: compareOp(func(a, b float64) bool { return a > b }), numeric: true},
	"GreaterEqualThan": {kind: kindScalar, arity: minArity(2), scalar: compareOp(func(a, b float64) bool { return a >= b }), numeric: true},
	"LessThan":         {kind: kindScalar, arity: minArity(2), scalar: compareOp(func(a, b float64) bool { return a < b }), numeric: true},
	"LessEqualThan":    {kind: kindScalar, arity: minArity(2), scalar: compareOp(func(a, b float64) bool { return a <= b }), numeric: true},
	"Count": {
		kind:  kindScalar,
		arity: minArity(0),
		scalar: func(args []report.Cell) (report.Cell, error) {
			var title, date *report.Cell
			if len(args) > 0 {
				title, date = args[0].Title, args[0].Date
			}
			return report.NewNumberCell(float64(len(args))).WithAnnotations(title, date), nil
		},
		numeric: false,
	},
	"Average": {
		kind:  kindScalar,
		arity: minArity(1),
		scalar: func(args []report.Cell) (report.Cell, error) {
			floats, err := report.CellsToFloats(args, true)
			if err != nil {
				return report.Cell{}, err
			}
			if len(floats) == 0 {
				return report.Cell{}, &ArgumentError{Reason: "Average has no coercible arguments"}
			}
			sum := 0.0
			for _, f := range floats {
				sum += f
			}
			return report.NewNumberCell(sum / float64(len(floats))).WithAnnotations(args[0].Title, args[0].Date), nil
		},
		numeric: true,
	},
	"Floor": {
		kind:  kindScalar,
		arity: exactArity(1),
		scalar: func(args []report.Cell) (report.Cell, error) {
			f, err := report.CellToFloat(args[0])
			if err != nil {
				return report.Cell{}, err
			}
			return report.NewNumberCell(math.Floor(f)).WithAnnotations(args[0].Title, args[0].Date), nil
		},
		numeric: true,
	},
	"Ceiling": {
		kind:  kindScalar,
		arity: exactArity(1),
		scalar: func(args []report.Cell) (report.Cell, error) {
			f, err := report.CellToFloat(args[0])
			if err != nil {
				return report.Cell{}, err
			}
			return report.NewNumberCell(math.Ceil(f)).WithAnnotations(args[0].Title, args[0].Date), nil
		},
		numeric: true,
	},
	"Round": {
		kind:  kindScalar,
		arity: exactArity(2),
		scalar: func(args []report.Cell) (report.Cell, error) {
			f, err := report.CellToFloat(args[0])
			if err != nil {
				return report.Cell{}, err
			}
			places, err := report.CellToFloat(args[1])
			if err != nil {
				return report.Cell{}, err
			}
			mult := math.Pow(10, places)
			return report.NewNumberCell(math.Round(f*mult) / mult).WithAnnotations(args[0].Title, args[0].Date), nil
		},
		numeric: true,
	},
	"VectorAdd":         {kind: kindVector, arity: minArity(2), vector: vectorOp(func(a, b float64) float64 { return a + b })},
	"VectorSubtract":    {kind: kindVector, arity: minArity(2), vector: vectorOp(func(a, b float64) float64 { return a - b })},
	"VectorMultiply":    {kind: kindVector, arity: minArity(2), vector: vectorOp(func(a, b float64) float64 { return a * b })},
	"VectorDivide":      {kind: kindVector, arity: minArity(2), vector: vectorOp(func(a, b float64) float64 { return a / b })},
	"VectorFloorDivide": {kind: kindVector, arity: minArity(2), vector: vectorOp(func(a, b float64) float64 { return math.Floor(a / b) })},
	"IfElse": {kind: kindIfElse, arity: exactArity(3)},
	"get_dates": {
		kind:  kindBinding,
		arity: exactArity(1),
		binding: func(trav *report.ReportTraverser, args []report.Cell) ([]report.Cell, error) {
			return trav.GetDates()
		},
	},
	"get_titles": {
		kind:  kindBinding,
		arity: exactArity(1),
		binding: func(trav *report.ReportTraverser, args []report.Cell) ([]report.Cell, error) {
			return trav.GetTitles()
		},
	},
	"get_cell_by_index": {
		kind:  kindBinding,
		arity: exactArity(3),
		binding: func(trav *report.ReportTraverser, args []report.Cell) ([]report.Cell, error) {
			titleIndex, err := report.CellToFloat(args[0])
			if err != nil {
				return nil, &ArgumentError{Reason: "title_index is not numeric"}
			}
			dateIndex, err := report.CellToFloat(args[1])
			if err != nil {
				return nil, &ArgumentError{Reason: "date_index is not numeric"}
			}
			cell, err := trav.GetCellByIndex(int(titleIndex), int(dateIndex))
			if err != nil {
				return nil, err
			}
			return []report.Cell{cell}, nil
		},
	},
	"get_cell_by_text": {
		kind:  kindBinding,
		arity: exactArity(3),
		binding: func(trav *report.ReportTraverser, args []report.Cell) ([]report.Cell, error) {
			cell, err := trav.GetCellByText(args[0].Value.Text, args[1].Value.Text)
			if err != nil {
				return nil, err
			}
			return []report.Cell{cell}, nil
		},
	},
	"get_cells_by_date": {
		kind:  kindBinding,
		arity: exactArity(2),
		binding: func(trav *report.ReportTraverser, args []report.Cell) ([]report.Cell, error) {
			return trav.GetCellsByDate(args[0].Value.Text)
		},
	},
	"get_cells_by_title": {
		kind:  kindBinding,
		arity: exactArity(2),
		binding: func(trav *report.ReportTraverser, args []report.Cell) ([]report.Cell, error) {
			return trav.GetCellsByTitle(args[0].Value.Text)
		},
	},
}

func lookup(name string) (funcDef, error) {
	def, ok := registry[name]
	if !ok {
		return funcDef{}, &UnknownFunctionError{Name: name}
	}
	return def, nil
}
