package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exercise-service/internal/services"
	"github.com/SAP-F-2025/exercise-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ResultHandler struct {
	BaseHandler
	exportService *services.ExportService
}

func NewResultHandler(exportService *services.ExportService, logger utils.Logger) *ResultHandler {
	return &ResultHandler{
		BaseHandler:   NewBaseHandler(logger),
		exportService: exportService,
	}
}

// GetResult returns a stored result record
// @Summary Get result
// @Tags results
// @Produce json
// @Param exercise_id path string true "Exercise ID"
// @Param result_id path string true "Result ID"
// @Success 200 {object} models.ExerciseResult
// @Failure 404 {object} ErrorResponse
// @Router /results/{exercise_id}/{result_id} [get]
func (h *ResultHandler) GetResult(c *gin.Context) {
	exerciseID := ParseStringIDParam(c, "exercise_id")
	if exerciseID == "" {
		return
	}
	resultID := ParseStringIDParam(c, "result_id")
	if resultID == "" {
		return
	}

	result, err := h.exportService.LoadResult(requestContext(c), exerciseID, resultID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportResult downloads one result as an Excel workbook
// @Summary Export result
// @Tags results
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param exercise_id path string true "Exercise ID"
// @Param result_id path string true "Result ID"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /results/{exercise_id}/{result_id}/export [get]
func (h *ResultHandler) ExportResult(c *gin.Context) {
	exerciseID := ParseStringIDParam(c, "exercise_id")
	if exerciseID == "" {
		return
	}
	resultID := ParseStringIDParam(c, "result_id")
	if resultID == "" {
		return
	}

	data, err := h.exportService.ExportResult(requestContext(c), exerciseID, resultID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.sendWorkbook(c, fmt.Sprintf("result_%s.xlsx", resultID), data)
}

// ExportExerciseResults downloads every stored result of an exercise.
func (h *ResultHandler) ExportExerciseResults(c *gin.Context) {
	exerciseID := ParseStringIDParam(c, "exercise_id")
	if exerciseID == "" {
		return
	}

	data, err := h.exportService.ExportExerciseResults(requestContext(c), exerciseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.sendWorkbook(c, fmt.Sprintf("exercise_%s_results.xlsx", exerciseID), data)
}

func (h *ResultHandler) sendWorkbook(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
