package convert

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToCSV_PassthroughCSV(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.csv")
	require.NoError(t, os.WriteFile(src, []byte("  a , b \nc,  d  \n"), 0644))

	dest := filepath.Join(dir, "out.csv")
	c := NewConverter(nil)
	require.NoError(t, c.ConvertToCSV(context.Background(), src, dest))

	out, err := readCSV(dest)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}}, out)
}

func TestConvertToCSV_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(src, []byte("whatever"), 0644))

	c := NewConverter(nil)
	err := c.ConvertToCSV(context.Background(), src, filepath.Join(dir, "out.csv"))
	require.Error(t, err)
	var unsupported *UnsupportedFormatError
	assert.ErrorAs(t, err, &unsupported)
}

func TestNormalizeRowsConcurrently_PreservesOrder(t *testing.T) {
	c := NewConverter(&WorkerConfig{MaxWorkers: 4, BatchSize: 2})
	rows := make([][]string, 0, 20)
	for i := 0; i < 20; i++ {
		rows = append(rows, []string{"  val" + itoaTest(i) + " "})
	}

	out, err := c.normalizeRowsConcurrently(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, out, 20)
	for i, row := range out {
		assert.Equal(t, "val"+itoaTest(i), row[0])
	}
}

func TestNormalizeRowsConcurrently_EmptyInput(t *testing.T) {
	c := NewConverter(nil)
	out, err := c.normalizeRowsConcurrently(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDefaultWorkerConfig_FillsZeroValues(t *testing.T) {
	c := NewConverter(&WorkerConfig{})
	assert.Greater(t, c.config.MaxWorkers, 0)
	assert.Greater(t, c.config.BatchSize, 0)
}

func itoaTest(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
