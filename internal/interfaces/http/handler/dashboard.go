package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/datascientist-hue/live-dashboard/internal/application/reporting"
	"github.com/datascientist-hue/live-dashboard/internal/domain/identity"
	"github.com/datascientist-hue/live-dashboard/internal/domain/sales"
	"github.com/datascientist-hue/live-dashboard/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// queryDateLayout is the date format of the range-picker query parameters.
const queryDateLayout = "2006-01-02"

// filterParams maps query parameter names to hierarchy dimensions.
var filterParams = map[string]sales.Dimension{
	"region":   sales.DimRegion,
	"district": sales.DimDistrict,
	"area":     sales.DimArea,
	"officer":  sales.DimOfficer,
}

// DashboardHandler serves the reporting endpoints.
type DashboardHandler struct {
	BaseHandler
	dashboard *reporting.DashboardService
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(dashboard *reporting.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

func session(c *gin.Context) reporting.Session {
	claims := middleware.GetClaims(c)
	return reporting.Session{Role: claims.Role, Scope: claims.Scope}
}

// parseSelection reads the filter and date-range query parameters. Filter
// parameters may repeat to select multiple values; an absent parameter
// leaves that dimension unfiltered.
func parseSelection(c *gin.Context) (reporting.Selection, error) {
	sel := reporting.Selection{Filters: make(map[sales.Dimension][]string)}

	for param, dim := range filterParams {
		if values := c.QueryArray(param); len(values) > 0 {
			sel.Filters[dim] = values
		}
	}

	if raw := c.Query("start_date"); raw != "" {
		t, err := time.Parse(queryDateLayout, raw)
		if err != nil {
			return sel, fmt.Errorf("start_date must be formatted as %s", queryDateLayout)
		}
		sel.StartDate = t
	}
	if raw := c.Query("end_date"); raw != "" {
		t, err := time.Parse(queryDateLayout, raw)
		if err != nil {
			return sel, fmt.Errorf("end_date must be formatted as %s", queryDateLayout)
		}
		sel.EndDate = t
	}
	if !sel.StartDate.IsZero() && !sel.EndDate.IsZero() && sel.EndDate.Before(sel.StartDate) {
		return sel, fmt.Errorf("end_date must not precede start_date")
	}
	return sel, nil
}

// Overview handles GET /api/v1/dashboard/overview
func (h *DashboardHandler) Overview(c *gin.Context) {
	sel, err := parseSelection(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	overview, err := h.dashboard.Overview(c.Request.Context(), session(c), sel)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, overview)
}

// Table handles GET /api/v1/dashboard/tables/:view
func (h *DashboardHandler) Table(c *gin.Context) {
	sel, err := parseSelection(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	view := identity.GroupView(c.Param("view"))
	table, err := h.dashboard.Table(c.Request.Context(), session(c), sel, view)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, table)
}

// Export handles GET /api/v1/dashboard/tables/:view/export
func (h *DashboardHandler) Export(c *gin.Context) {
	sel, err := parseSelection(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	view := identity.GroupView(c.Param("view"))
	data, err := h.dashboard.ExportTableCSV(c.Request.Context(), session(c), sel, view)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("dashboard-%s-%s.csv", view, time.Now().Format(queryDateLayout))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// Share handles GET /api/v1/dashboard/tables/:view/share
func (h *DashboardHandler) Share(c *gin.Context) {
	sel, err := parseSelection(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	view := identity.GroupView(c.Param("view"))
	text, err := h.dashboard.ShareTableText(c.Request.Context(), session(c), sel, view)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"text": text})
}

// Refresh handles POST /api/v1/dashboard/refresh
func (h *DashboardHandler) Refresh(c *gin.Context) {
	if err := h.dashboard.Refresh(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
