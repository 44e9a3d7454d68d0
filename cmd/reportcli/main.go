package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"reportforms/convert"
	"reportforms/formula"
	"reportforms/report"
)

func main() {
	var (
		reportPaths = flag.String("reports", "", "Comma-separated report paths (.csv, .xlsx, .xlsm, .xlsb), in traverser-index order")
		formulaExpr = flag.String("formula", "", "Formula expression to evaluate against the given reports")
		expectList  = flag.Bool("list", false, "Require the result to be list-valued")
		convertOnly = flag.String("convert", "", "Convert a single source workbook to CSV and exit")
		convertOut  = flag.String("out", "", "Destination path for -convert")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	if *convertOnly != "" {
		runConvert(*convertOnly, *convertOut)
		return
	}

	if *formulaExpr == "" || *reportPaths == "" {
		log.Fatal("both -formula and -reports are required (see -help)")
	}

	runEvaluate(*formulaExpr, *reportPaths, *expectList)
}

func runConvert(src, dest string) {
	if dest == "" {
		dest = strings.TrimSuffix(src, filepath.Ext(src)) + ".csv"
	}

	c := convert.NewConverter(nil)
	if err := c.ConvertToCSV(context.Background(), src, dest); err != nil {
		log.Fatalf("conversion failed: %v", err)
	}
	fmt.Printf("wrote %s\n", dest)
}

func runEvaluate(formulaExpr, reportPaths string, expectList bool) {
	paths := strings.Split(reportPaths, ",")
	traversers := make([]*report.ReportTraverser, 0, len(paths))

	for _, path := range paths {
		path = strings.TrimSpace(path)
		decision, err := report.Decide(path)
		if err != nil {
			log.Fatalf("axis inference failed for %s: %v", path, err)
		}
		traversers = append(traversers, report.NewReportTraverser(path, decision))
	}

	evaluator := formula.NewEvaluator(traversers...)
	result, err := evaluator.EvaluateFormula(formulaExpr, expectList)
	if err != nil {
		log.Fatalf("evaluation failed: %v", err)
	}

	printResult(result)
}

func printResult(result formula.EvalResult) {
	if !result.IsVector {
		fmt.Println(result.Scalar.Value.String())
		return
	}

	values := make([]string, len(result.Vector))
	for i, cell := range result.Vector {
		values[i] = cell.Value.String()
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		log.Fatalf("failed to encode result: %v", err)
	}
	fmt.Println(string(encoded))
}

func showHelp() {
	fmt.Println("Report Formula CLI")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  reportcli -reports=a.csv,b.csv -formula='Add(get_cell_by_index(0,0,0), get_cell_by_index(1,0,0))'")
	fmt.Println("  reportcli -convert=source.xlsx -out=dest.csv")
	fmt.Println()
	flag.PrintDefaults()
	os.Exit(0)
}
