package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/medguide-be/service"
	"github.com/tieubaoca/medguide-be/types"
	"github.com/tieubaoca/medguide-be/utils"
)

type ReportHandler struct {
	reportService    *service.ReportService
	knowledgeService *service.KnowledgeService
	uploadDir        string
}

func NewReportHandler(reportService *service.ReportService, knowledgeService *service.KnowledgeService, uploadDir string) *ReportHandler {
	return &ReportHandler{
		reportService:    reportService,
		knowledgeService: knowledgeService,
		uploadDir:        uploadDir,
	}
}

// HandleUploadReport accepts a PDF, runs the analysis pipeline on it and
// rebuilds the knowledge base from the fresh artifacts.
func (h *ReportHandler) HandleUploadReport(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid file",
		})
		return
	}

	const maxSize = 20 << 20
	if file.Size > maxSize {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "File too large",
		})
		return
	}

	tmpPath := filepath.Join(os.TempDir(), filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: "Failed to save file",
		})
		return
	}
	defer os.Remove(tmpPath)

	// Keep a timestamped copy so repeated uploads of the same report
	// do not overwrite each other.
	dest, err := utils.CopyFileWithTimestamp(tmpPath, h.uploadDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: "Failed to store file",
		})
		return
	}

	result, err := h.reportService.AnalyzeReport(c.Request.Context(), dest)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	indexed, err := h.knowledgeService.BuildKnowledgeBase(c.Request.Context(), true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: "Report analyzed but indexing failed: " + err.Error(),
		})
		return
	}

	var failedPages []int
	for _, page := range result.Pages {
		if page.Failed {
			failedPages = append(failedPages, page.Page)
		}
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data: types.ReportRunResponse{
			FileName:      file.Filename,
			PagesAnalyzed: len(result.Pages),
			FailedPages:   failedPages,
			FinalReport:   result.FinalReport,
			FilesIndexed:  indexed,
		},
	})
}

// HandleGetFinalReport serves the final report artifact of the last run.
func (h *ReportHandler) HandleGetFinalReport(c *gin.Context) {
	content, err := os.ReadFile(h.reportService.FinalReportPath())
	if err != nil {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  "error",
			Message: "No final report available",
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data: types.FinalReportResponse{
			FinalReport: string(content),
		},
	})
}
