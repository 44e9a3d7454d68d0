package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAxisKind_Opposite(t *testing.T) {
	testCases := []struct {
		name     string
		axis     AxisKind
		expected AxisKind
	}{
		{"row becomes column", AxisRow, AxisColumn},
		{"column becomes row", AxisColumn, AxisRow},
		{"none stays none", AxisNone, AxisNone},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.axis.Opposite())
			assert.Equal(t, tc.axis, tc.axis.Opposite().Opposite())
		})
	}
}

func TestAxisKind_String(t *testing.T) {
	assert.Equal(t, "Row", AxisRow.String())
	assert.Equal(t, "Column", AxisColumn.String())
	assert.Equal(t, "None", AxisNone.String())
}
