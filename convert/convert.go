package convert

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/TsubasaBE/go-xlsb"
	"github.com/xuri/excelize/v2"
)

// Converter translates a source workbook (.xlsx, .xlsm, .xlsb) or an
// already-CSV file into the CSV form the report package's axis inference
// and traversal operate on. Row text is normalized (whitespace-trimmed)
// by a bounded worker pool, since this is the one genuinely
// concurrency-amenable seam in an otherwise single-threaded evaluation
// pipeline.
type Converter struct {
	config *WorkerConfig
}

// NewConverter builds a Converter. A nil config uses DefaultWorkerConfig.
func NewConverter(config *WorkerConfig) *Converter {
	return &Converter{config: config.normalize()}
}

// ConvertToCSV reads srcPath (format determined by extension) and writes
// one sheet to destPath as CSV: for .xlsx/.xlsm the sheet named "Sheet1"
// when it has rows, else the first sheet; for .xlsb the first sheet.
func (c *Converter) ConvertToCSV(ctx context.Context, srcPath, destPath string) error {
	rows, err := c.readRows(srcPath)
	if err != nil {
		return err
	}

	cleaned, err := c.normalizeRowsConcurrently(ctx, rows)
	if err != nil {
		return err
	}

	return writeCSV(destPath, cleaned)
}

func (c *Converter) readRows(path string) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".xlsx", ".xlsm":
		return readXLSX(path)
	case ".xlsb":
		return readXLSB(path)
	case ".csv":
		return readCSV(path)
	default:
		return nil, &UnsupportedFormatError{Ext: ext}
	}
}

// readXLSX tries "Sheet1", else falls back to the first sheet in the
// workbook.
func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &SourceReadError{Path: path, Err: err}
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil || len(rows) == 0 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, &SourceReadError{Path: path, Err: fmt.Errorf("no sheets found")}
		}
		rows, err = f.GetRows(sheets[0])
		if err != nil {
			return nil, &SourceReadError{Path: path, Err: err}
		}
	}
	return rows, nil
}

func readXLSB(path string) ([][]string, error) {
	wb, err := xlsb.Open(path)
	if err != nil {
		return nil, &SourceReadError{Path: path, Err: err}
	}
	defer wb.Close()

	sheets := wb.Sheets()
	if len(sheets) == 0 {
		return nil, &SourceReadError{Path: path, Err: fmt.Errorf("no sheets found")}
	}
	sheet, err := wb.Sheet(0)
	if err != nil {
		return nil, &SourceReadError{Path: path, Err: err}
	}

	var rows [][]string
	for row := range sheet.Rows(false) {
		record := make([]string, len(row))
		for i, cell := range row {
			record[i] = wb.FormatCell(cell.V, cell.Style)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &SourceReadError{Path: path, Err: err}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &SourceReadError{Path: path, Err: err}
	}
	return rows, nil
}

// normalizeRowsConcurrently trims whitespace from every cell across a
// bounded pool of workers, one batch of config.BatchSize rows per unit of
// work, preserving input order in the result.
func (c *Converter) normalizeRowsConcurrently(ctx context.Context, rows [][]string) ([][]string, error) {
	if len(rows) == 0 {
		return rows, nil
	}

	type batch struct {
		start int
		rows  [][]string
	}
	type batchResult struct {
		start int
		rows  [][]string
	}

	var batches []batch
	for start := 0; start < len(rows); start += c.config.BatchSize {
		end := start + c.config.BatchSize
		if end > len(rows) {
			end = len(rows)
		}
		batches = append(batches, batch{start: start, rows: rows[start:end]})
	}

	workChan := make(chan batch, len(batches))
	resultsChan := make(chan batchResult, len(batches))

	workerCount := c.config.MaxWorkers
	if workerCount > len(batches) {
		workerCount = len(batches)
	}

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case b, ok := <-workChan:
					if !ok {
						return
					}
					resultsChan <- batchResult{start: b.start, rows: normalizeBatch(b.rows)}
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(workChan)
		for _, b := range batches {
			select {
			case workChan <- b:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	out := make([][]string, len(rows))
	for result := range resultsChan {
		copy(out[result.start:result.start+len(result.rows)], result.rows)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeBatch(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		cleaned := make([]string, len(row))
		for j, cell := range row {
			cleaned[j] = strings.TrimSpace(cell)
		}
		out[i] = cleaned
	}
	return out
}

func writeCSV(destPath string, rows [][]string) error {
	f, err := os.Create(destPath)
	if err != nil {
		return &SourceReadError{Path: destPath, Err: err}
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return &SourceReadError{Path: destPath, Err: err}
		}
	}
	w.Flush()
	return w.Error()
}
