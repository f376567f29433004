package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"aeroops/internal/database"
	"aeroops/internal/grid"
	"aeroops/internal/models"
	"aeroops/internal/reports"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	reports *reports.Service
	grid    *grid.Service
}

func NewReportHandler(reportSvc *reports.Service, gridSvc *grid.Service) *ReportHandler {
	return &ReportHandler{reports: reportSvc, grid: gridSvc}
}

// GET /api/sites/:id/dashboard
func (h *ReportHandler) SiteDashboard(c *gin.Context) {
	siteID, ok := parseID(c, "id")
	if !ok {
		return
	}

	dashboard, err := h.reports.SiteDashboard(c.Request.Context(), siteID)
	if err != nil {
		if errors.Is(err, reports.ErrSiteNotFound) {
			respondError(c, http.StatusNotFound, "not_found", "site not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "db_error", "failed to build dashboard")
		return
	}
	c.JSON(http.StatusOK, gin.H{"dashboard": dashboard})
}

// GET /api/sites/:id/grid/export
func (h *ReportHandler) ExportGrid(c *gin.Context) {
	siteID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var site models.Site
	if err := database.DB.First(&site, siteID).Error; err != nil {
		respondError(c, http.StatusNotFound, "not_found", "site not found")
		return
	}

	assets, err := h.grid.ListBySite(c.Request.Context(), siteID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "db_error", "failed to load grid")
		return
	}

	buf, err := reports.ExportGridXLSX(site.Name, assets)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "export_failed", "failed to build spreadsheet")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("grid-site-%d.xlsx", siteID)))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
