package httpapi

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"reportforms/formula"
	"reportforms/internal/apierrors"
	"reportforms/internal/monitoring"
	"reportforms/report"
)

// convertResponse is returned by POST /api/convert.
type convertResponse struct {
	ReportPath string   `json:"report_path"`
	DateAxis   string   `json:"date_axis"`
	DateIndex  int      `json:"date_index"`
	TitleAxis  string   `json:"title_axis"`
	TitleIndex int      `json:"title_index"`
	Dates      []string `json:"dates"`
	Titles     []string `json:"titles"`
}

// handleConvert accepts a multipart "file" field, saves it, converts it to
// CSV if it isn't already, infers its axes and returns a summary along with
// the server-side path future /api/evaluate calls should reference.
func (s *Server) handleConvert(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		s.abortWithError(c, "convert", "upload", apierrors.NewAPIError(apierrors.ErrMissingFile, "missing \"file\" form field").
			WithUserMessage("Attach a spreadsheet under the \"file\" field."))
		return
	}

	filename, savedPath, err := s.files.SaveUploadedFile(fileHeader)
	if err != nil {
		s.abortWithError(c, "convert", "upload", apierrors.FileUploadError("invalid_format").WithDetails(err.Error()))
		return
	}

	csvPath := savedPath
	if ext := strings.ToLower(filepath.Ext(filename)); ext != ".csv" {
		csvPath = strings.TrimSuffix(savedPath, filepath.Ext(savedPath)) + ".csv"
		if err := s.converter.ConvertToCSV(c.Request.Context(), savedPath, csvPath); err != nil {
			s.abortWithError(c, "convert", "workbook_to_csv", apierrors.ConversionFailed(err.Error()))
			return
		}
	}

	decision, err := report.Decide(csvPath)
	if err != nil {
		s.abortWithError(c, "convert", "axis_inference", apierrors.AxisInferenceFailed(err))
		return
	}

	traverser := report.NewReportTraverser(csvPath, decision)
	dates, err := traverser.GetDates()
	if err != nil {
		s.abortWithError(c, "convert", "read_dates", apierrors.InternalServer(err.Error()))
		return
	}
	titles, err := traverser.GetTitles()
	if err != nil {
		s.abortWithError(c, "convert", "read_titles", apierrors.InternalServer(err.Error()))
		return
	}

	c.JSON(http.StatusOK, convertResponse{
		ReportPath: csvPath,
		DateAxis:   decision.DateAxis.String(),
		DateIndex:  decision.DateIndex,
		TitleAxis:  decision.TitleAxis.String(),
		TitleIndex: decision.TitleIndex,
		Dates:      cellTexts(dates),
		Titles:     cellTexts(titles),
	})
}

func cellTexts(cells []report.Cell) []string {
	out := make([]string, len(cells))
	for i, cell := range cells {
		out[i] = cell.Value.String()
	}
	return out
}

// evaluateRequest is the body of POST /api/evaluate.
type evaluateRequest struct {
	Formula       string   `json:"formula" binding:"required"`
	Reports       []string `json:"reports" binding:"required,min=1"`
	ExpectingList bool     `json:"expecting_list"`
}

// cellDTO is the JSON projection of a report.Cell.
type cellDTO struct {
	Value string   `json:"value"`
	Title *string  `json:"title,omitempty"`
	Date  *string  `json:"date,omitempty"`
}

func toCellDTO(c report.Cell) cellDTO {
	dto := cellDTO{Value: c.Value.String()}
	if c.Title != nil {
		t := c.Title.Value.String()
		dto.Title = &t
	}
	if c.Date != nil {
		d := c.Date.Value.String()
		dto.Date = &d
	}
	return dto
}

// evaluateResponse is returned by POST /api/evaluate.
type evaluateResponse struct {
	IsVector bool      `json:"is_vector"`
	Scalar   *cellDTO  `json:"scalar,omitempty"`
	Vector   []cellDTO `json:"vector,omitempty"`
}

// handleEvaluate parses and evaluates a formula against one or more
// previously-converted report paths, resolved through the traverser cache
// keyed by path+mtime.
func (s *Server) handleEvaluate(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, "evaluate", "bind_request", apierrors.NewAPIError(apierrors.ErrMissingParameter, err.Error()))
		return
	}

	traversers := make([]*report.ReportTraverser, 0, len(req.Reports))
	for _, path := range req.Reports {
		value, err := s.traversers.Get(path)
		if err != nil {
			s.abortWithError(c, "evaluate", "load_traverser", apierrors.AxisInferenceFailed(err))
			return
		}
		trav, ok := value.(*report.ReportTraverser)
		if !ok {
			s.abortWithError(c, "evaluate", "load_traverser", apierrors.InternalServer(
				fmt.Sprintf("cached value for %s is not a report traverser", path)))
			return
		}
		traversers = append(traversers, trav)
	}

	evaluator := formula.NewEvaluator(traversers...)
	result, err := evaluator.EvaluateFormula(req.Formula, req.ExpectingList)
	if err != nil {
		s.abortWithError(c, "evaluate", "evaluate_formula", classifyFormulaError(err))
		return
	}

	resp := evaluateResponse{IsVector: result.IsVector}
	if result.IsVector {
		resp.Vector = make([]cellDTO, len(result.Vector))
		for i, cell := range result.Vector {
			resp.Vector[i] = toCellDTO(cell)
		}
	} else {
		scalar := toCellDTO(result.Scalar)
		resp.Scalar = &scalar
	}

	c.JSON(http.StatusOK, resp)
}

// classifyFormulaError maps a formula package error to the HTTP-facing
// error taxonomy so clients can distinguish a malformed formula from a
// lookup or evaluation failure.
func classifyFormulaError(err error) *apierrors.APIError {
	switch err.(type) {
	case *formula.ParseError:
		return apierrors.NewAPIError(apierrors.ErrFormulaSyntax, err.Error())
	case *formula.UnknownFunctionError:
		return apierrors.NewAPIError(apierrors.ErrUnknownFunction, err.Error())
	case *formula.ArityError:
		return apierrors.NewAPIError(apierrors.ErrArity, err.Error())
	case *formula.ArgumentError:
		return apierrors.NewAPIError(apierrors.ErrInvalidParameter, err.Error())
	default:
		return apierrors.EvaluationFailed(err)
	}
}

// handleHealth reports liveness plus the monitoring package's aggregated
// error/performance snapshot.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, monitoring.GetHealthStatus())
}
