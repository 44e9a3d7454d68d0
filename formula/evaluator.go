package formula

import "reportforms/report"

// EvalResult is the Scalar-or-Vector sum type of a formula's final result;
// node evaluation below the root passes plain Cell sequences. Exactly one
// of Scalar/Vector is meaningful, selected by IsVector — the caller asked
// evaluate(node, expecting_list) for a sequence or a singleton.
type EvalResult struct {
	Scalar   report.Cell
	Vector   []report.Cell
	IsVector bool
}

// Evaluator evaluates parse Trees against an ordered, shared sequence of
// traversers. Every binding's first argument selects one by 0-based
// index, letting one formula combine data from multiple reports.
type Evaluator struct {
	Traversers []*report.ReportTraverser
}

// NewEvaluator builds an Evaluator over an ordered traverser sequence.
func NewEvaluator(traversers ...*report.ReportTraverser) *Evaluator {
	return &Evaluator{Traversers: traversers}
}

// EvaluateFormula parses input and evaluates it in one step.
func (e *Evaluator) EvaluateFormula(input string, expectingList bool) (EvalResult, error) {
	tree, err := Parse(input)
	if err != nil {
		return EvalResult{}, err
	}
	return e.Evaluate(tree, expectingList)
}

// Evaluate runs the tree's root node and shapes the result per
// expectingList: the full sequence, or just its first element.
func (e *Evaluator) Evaluate(tree *Tree, expectingList bool) (EvalResult, error) {
	cells, err := e.evalNode(tree, tree.Root)
	if err != nil {
		return EvalResult{}, err
	}
	if expectingList {
		return EvalResult{Vector: cells, IsVector: true}, nil
	}
	if len(cells) == 0 {
		return EvalResult{}, &ArgumentError{Reason: "formula produced no value"}
	}
	return EvalResult{Scalar: cells[0]}, nil
}

// EvaluateTrees evaluates an ordered sequence of independent trees and
// returns their singleton results in order.
func (e *Evaluator) EvaluateTrees(trees []*Tree) ([]report.Cell, error) {
	out := make([]report.Cell, 0, len(trees))
	for _, t := range trees {
		res, err := e.Evaluate(t, false)
		if err != nil {
			return nil, err
		}
		out = append(out, res.Scalar)
	}
	return out, nil
}

// evalNode recursively evaluates the node at idx, returning its result as
// a Cell sequence — a one-element sequence for every scalar-shaped
// function, a Constant, or a singleton binding.
func (e *Evaluator) evalNode(tree *Tree, idx int) ([]report.Cell, error) {
	node := tree.Nodes[idx]

	if node.Kind == NodeConstant {
		return []report.Cell{report.NewTextCell(node.Text)}, nil
	}

	name := node.Text
	if name == "IfElse" {
		return e.evalIfElse(tree, idx)
	}

	def, err := lookup(name)
	if err != nil {
		return nil, err
	}
	if err := def.arity.check(name, len(node.Children)); err != nil {
		return nil, err
	}

	if def.kind == kindVector {
		vectors := make([][]report.Cell, len(node.Children))
		for i, c := range node.Children {
			v, err := e.evalNode(tree, c)
			if err != nil {
				return nil, err
			}
			vectors[i] = v
		}
		return def.vector(vectors)
	}

	// Scalar and binding functions flatten every child's result into one
	// argument sequence.
	var args []report.Cell
	for _, c := range node.Children {
		v, err := e.evalNode(tree, c)
		if err != nil {
			return nil, err
		}
		args = append(args, v...)
	}

	if def.kind == kindBinding {
		if len(args) == 0 {
			return nil, &ArgumentError{Reason: name + " requires a traverser index argument"}
		}
		trav, err := traverserIndexFromArg(args[0], e.Traversers)
		if err != nil {
			return nil, err
		}
		result, err := def.binding(trav, args[1:])
		if err != nil {
			return nil, err
		}
		if e.parentIsNumeric(tree, idx) {
			result = castCellsNumeric(result)
		}
		return result, nil
	}

	cell, err := def.scalar(args)
	if err != nil {
		return nil, err
	}
	return []report.Cell{cell}, nil
}

// parentIsNumeric reports whether node idx's enclosing function is in the
// arithmetic/comparison/aggregate set, per the traverser binding semantics
// rule: a binding's result is re-cast to numeric only when consumed by one
// of those functions.
func (e *Evaluator) parentIsNumeric(tree *Tree, idx int) bool {
	parent := tree.Nodes[idx].Parent
	if parent < 0 {
		return false
	}
	def, ok := registry[tree.Nodes[parent].Text]
	return ok && def.numeric
}

// castCellsNumeric re-casts a binding's text Cells to numeric, silently
// dropping entries that don't coerce (skips=true), preserving each
// surviving Cell's title/date annotations.
func castCellsNumeric(cells []report.Cell) []report.Cell {
	out := make([]report.Cell, 0, len(cells))
	for _, c := range cells {
		f, err := report.CellToFloat(c)
		if err != nil {
			continue
		}
		out = append(out, report.NewNumberCell(f).WithAnnotations(c.Title, c.Date))
	}
	return out
}

// evalIfElse evaluates only the selected branch (condition.value > 0.0
// picks the "then" child, else the "else" child), returning it unchanged —
// this is what preserves the chosen branch's list-shape without needing a
// separate vector/scalar merge rule for IfElse itself. The unselected
// branch is never evaluated: formula evaluation has no side effects beyond
// traverser reads, so short-circuiting changes nothing observable.
func (e *Evaluator) evalIfElse(tree *Tree, idx int) ([]report.Cell, error) {
	node := tree.Nodes[idx]
	if err := exactArity(3).check("IfElse", len(node.Children)); err != nil {
		return nil, err
	}

	cond, err := e.evalNode(tree, node.Children[0])
	if err != nil {
		return nil, err
	}
	if len(cond) == 0 {
		return nil, &ArgumentError{Reason: "IfElse condition produced no value"}
	}
	condVal, err := report.CellToFloat(cond[0])
	if err != nil {
		return nil, err
	}

	branch := node.Children[2]
	if condVal > 0 {
		branch = node.Children[1]
	}
	return e.evalNode(tree, branch)
}
