package dashboard

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"uia-atlas/atlas-portal/internal/projects"
	"uia-atlas/atlas-portal/pkg/catalog"
	"uia-atlas/atlas-portal/pkg/filters"
)

// ProjectLister pages through approved projects.
type ProjectLister interface {
	ListPublic(ctx context.Context, f filters.Set, opts catalog.ListOptions) (*projects.Page, error)
}

// Handler serves the public dashboard.
type Handler struct {
	service  *Service
	projects ProjectLister
	logger   *zap.Logger
}

func NewHandler(service *Service, projects ProjectLister, logger *zap.Logger) *Handler {
	return &Handler{service: service, projects: projects, logger: logger}
}

// RegisterRoutes registers dashboard routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	dashboard := router.Group("/dashboard")
	{
		dashboard.GET("/filters", h.getFilterOptions)
		dashboard.GET("/kpis", h.getKPIs)
		dashboard.GET("/projects", h.listProjects)
		dashboard.GET("/map-markers", h.getMapMarkers)
		dashboard.GET("/summary", h.getSummary)

		analytics := dashboard.Group("/analytics")
		analytics.GET("/sdg-distribution", h.getSDGDistribution)
		analytics.GET("/regional-distribution", h.getRegionalDistribution)
		analytics.GET("/typology-distribution", h.getTypologyDistribution)
	}
}

// bindFilters parses the filter query parameters, answering 422 itself when
// they are malformed.
func (h *Handler) bindFilters(c *gin.Context) (filters.Set, bool) {
	f, err := filters.Parse(c.Request.URL.Query())
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "validation failed",
			"fields": gin.H{"sdg": err.Error()},
		})
		return f, false
	}
	return f, true
}

func (h *Handler) fail(c *gin.Context, err error, msg string) {
	var verrs catalog.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": verrs})
		return
	}
	h.logger.Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// getFilterOptions handles GET /api/dashboard/filters
func (h *Handler) getFilterOptions(c *gin.Context) {
	opts, err := h.service.FilterOptions(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to load filter options")
		return
	}
	c.JSON(http.StatusOK, opts)
}

// getKPIs handles GET /api/dashboard/kpis
func (h *Handler) getKPIs(c *gin.Context) {
	f, ok := h.bindFilters(c)
	if !ok {
		return
	}
	kpis, err := h.service.KPIs(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err, "Failed to compute KPIs")
		return
	}
	c.JSON(http.StatusOK, kpis)
}

// listProjects handles GET /api/dashboard/projects
func (h *Handler) listProjects(c *gin.Context) {
	f, ok := h.bindFilters(c)
	if !ok {
		return
	}
	opts, err := projects.BindListOptions(c)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	page, err := h.projects.ListPublic(c.Request.Context(), f, opts)
	if err != nil {
		h.fail(c, err, "Failed to list projects")
		return
	}
	c.JSON(http.StatusOK, page)
}

// getMapMarkers handles GET /api/dashboard/map-markers
func (h *Handler) getMapMarkers(c *gin.Context) {
	f, ok := h.bindFilters(c)
	if !ok {
		return
	}
	markers, err := h.service.MapMarkers(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err, "Failed to load map markers")
		return
	}
	c.JSON(http.StatusOK, markers)
}

// getSummary handles GET /api/dashboard/summary
func (h *Handler) getSummary(c *gin.Context) {
	f, ok := h.bindFilters(c)
	if !ok {
		return
	}
	summary, err := h.service.Summary(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err, "Failed to compute dashboard summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// getSDGDistribution handles GET /api/dashboard/analytics/sdg-distribution
func (h *Handler) getSDGDistribution(c *gin.Context) {
	f, ok := h.bindFilters(c)
	if !ok {
		return
	}
	out, err := h.service.SDGDistribution(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err, "Failed to compute SDG distribution")
		return
	}
	c.JSON(http.StatusOK, out)
}

// getRegionalDistribution handles GET /api/dashboard/analytics/regional-distribution
func (h *Handler) getRegionalDistribution(c *gin.Context) {
	f, ok := h.bindFilters(c)
	if !ok {
		return
	}
	out, err := h.service.RegionalDistribution(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err, "Failed to compute regional distribution")
		return
	}
	c.JSON(http.StatusOK, out)
}

// getTypologyDistribution handles GET /api/dashboard/analytics/typology-distribution
func (h *Handler) getTypologyDistribution(c *gin.Context) {
	f, ok := h.bindFilters(c)
	if !ok {
		return
	}
	out, err := h.service.TypologyDistribution(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err, "Failed to compute typology distribution")
		return
	}
	c.JSON(http.StatusOK, out)
}
