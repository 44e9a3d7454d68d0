package formula

import "strings"

// Parser tokens. Fully-parenthesized prefix calls, comma-separated
// arguments, no infix operators, no string quoting.
const (
	tokenArgStart     = '('
	tokenArgEnd       = ')'
	tokenArgDelimiter = ','
)

// Parse builds a Tree from a formula string by a single linear scan,
// mirroring the source's stutter/curr cursor algorithm: stutter marks the
// start of the pending token, curr is the node currently being descended
// into.
//
// The grammar is permissive by construction: any token that isn't
// recognized as a function name simply becomes a CONSTANT leaf, and
// arity/function-name validity is an evaluation-time concern, not a parse
// one. The only rejections here are a closing paren with no matching open
// and an input that contains no function call at all.
func Parse(input string) (*Tree, error) {
	t := &Tree{Root: -1}
	stutter := 0
	curr := -1

	flushConstant := func(i int) {
		if stutter < i {
			text := strings.TrimSpace(input[stutter:i])
			if text != "" {
				t.newNode(text, NodeConstant, curr)
			}
		}
	}

	for i, c := range input {
		switch c {
		case tokenArgStart:
			text := strings.TrimSpace(input[stutter:i])
			idx := t.newNode(text, NodeFunction, curr)
			if t.Root == -1 {
				t.Root = idx
			}
			curr = idx
			stutter = i + 1
		case tokenArgDelimiter:
			flushConstant(i)
			stutter = i + 1
		case tokenArgEnd:
			flushConstant(i)
			if curr == -1 {
				return nil, &ParseError{Reason: "unmatched closing parenthesis"}
			}
			curr = t.Nodes[curr].Parent
			stutter = i + 1
		}
	}

	if t.Root == -1 {
		return nil, &ParseError{Reason: "input contains no function call"}
	}
	return t, nil
}
