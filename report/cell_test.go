package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDenoise(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain number", "123", "123"},
		{"currency with dollar and commas", "$1,234.50", "1234.50"},
		{"true is 1", "true", "1"},
		{"True is 1 case-insensitive", "True", "1"},
		{"false is 0", "false", "0"},
		{"trims whitespace", "  42  ", "42"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, denoise(tc.input))
		})
	}
}

func TestCellToFloat(t *testing.T) {
	t.Run("numeric cell returns its value", func(t *testing.T) {
		f, err := CellToFloat(NewNumberCell(3.5))
		require.NoError(t, err)
		assert.Equal(t, 3.5, f)
	})

	t.Run("text cell is denoised then parsed", func(t *testing.T) {
		f, err := CellToFloat(NewTextCell("$1,200"))
		require.NoError(t, err)
		assert.Equal(t, 1200.0, f)
	})

	t.Run("unparseable text is a NumericCoercionError", func(t *testing.T) {
		_, err := CellToFloat(NewTextCell("not a number"))
		require.Error(t, err)
		var coercionErr *NumericCoercionError
		assert.ErrorAs(t, err, &coercionErr)
	})

	t.Run("absent cell is a NumericCoercionError", func(t *testing.T) {
		_, err := CellToFloat(AbsentCell)
		require.Error(t, err)
	})
}

func TestCellsToFloats(t *testing.T) {
	cells := []Cell{NewTextCell("1"), NewTextCell("oops"), NewTextCell("3")}

	t.Run("skips=true silently drops uncoercible entries", func(t *testing.T) {
		floats, err := CellsToFloats(cells, true)
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 3}, floats)
	})

	t.Run("skips=false aborts on first failure", func(t *testing.T) {
		_, err := CellsToFloats(cells, false)
		require.Error(t, err)
	})
}
