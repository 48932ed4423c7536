package projects

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"uia-atlas/atlas-portal/internal/auth"
	"uia-atlas/atlas-portal/pkg/catalog"
	"uia-atlas/atlas-portal/pkg/workflows"
)

// Handler serves the public submission endpoints and the admin review
// endpoints.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the public /projects routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/projects")
	{
		group.POST("/submit", h.submit)
		group.GET("/edit/:token", h.getByToken)
		group.PUT("/edit/:token", h.updateByToken)
		group.GET("/:id", h.getPublic)
	}
}

// RegisterAdminRoutes registers the /admin routes. The caller is expected to
// install authentication on router.
func (h *Handler) RegisterAdminRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin")
	{
		admin.GET("/pending-projects", h.listPending)
		admin.GET("/all-projects", h.listAll)
		admin.GET("/projects/:id", h.get)
		admin.PATCH("/projects/:id", h.update)
		admin.POST("/projects/:id/approve", h.review(func(*gin.Context) workflows.ReviewAction {
			return workflows.Approve()
		}))
		admin.POST("/projects/:id/reject", h.review(func(c *gin.Context) workflows.ReviewAction {
			return workflows.Reject(c.Query("reason"))
		}))
		admin.POST("/projects/:id/request-changes", h.review(func(c *gin.Context) workflows.ReviewAction {
			return workflows.RequestChanges(c.Query("message"))
		}))
		admin.POST("/projects/:id/start-review", h.review(func(*gin.Context) workflows.ReviewAction {
			return workflows.StartReview()
		}))
		admin.GET("/projects/:id/history", h.history)
	}
}

// respondError maps service errors onto status codes.
func (h *Handler) respondError(c *gin.Context, err error, msg string) {
	var verrs catalog.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": verrs})
	case errors.Is(err, workflows.ErrNoteRequired):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, workflows.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error(msg, zap.Error(err), zap.String("path", c.FullPath()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

func (h *Handler) projectID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrNotFound.Error()})
		return uuid.Nil, false
	}
	return id, true
}

// =====================================================
// Public endpoints
// =====================================================

// submit handles POST /api/projects/submit
func (h *Handler) submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.service.Submit(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err, "Failed to submit project")
		return
	}

	c.JSON(http.StatusCreated, project)
}

// getPublic handles GET /api/projects/:id
func (h *Handler) getPublic(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}
	project, err := h.service.GetPublic(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to get project")
		return
	}
	c.JSON(http.StatusOK, project)
}

// getByToken handles GET /api/projects/edit/:token
func (h *Handler) getByToken(c *gin.Context) {
	project, err := h.service.GetByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.respondError(c, err, "Failed to get project")
		return
	}
	c.JSON(http.StatusOK, project)
}

// updateByToken handles PUT /api/projects/edit/:token
func (h *Handler) updateByToken(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.service.UpdateByToken(c.Request.Context(), c.Param("token"), &req)
	if err != nil {
		h.respondError(c, err, "Failed to update project")
		return
	}
	c.JSON(http.StatusOK, project)
}

// =====================================================
// Admin endpoints
// =====================================================

// BindListOptions reads page, page_size, sort_by and sort_order. Absent
// values take their defaults; malformed ones are validation errors.
func BindListOptions(c *gin.Context) (catalog.ListOptions, error) {
	opts := catalog.ListOptions{
		Page:      1,
		PageSize:  catalog.DefaultPageSize,
		SortBy:    catalog.SortByCreatedAt,
		SortOrder: catalog.SortDesc,
	}
	errs := catalog.ValidationErrors{}

	if raw, ok := c.GetQuery("page"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			errs["page"] = "must be a positive integer"
		}
		opts.Page = n
	}
	if raw, ok := c.GetQuery("page_size"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > catalog.MaxPageSize {
			errs["pageSize"] = "must be between 1 and " + strconv.Itoa(catalog.MaxPageSize)
		}
		opts.PageSize = n
	}
	if raw, ok := c.GetQuery("sort_by"); ok {
		if _, known := sortColumns[catalog.SortField(raw)]; !known {
			errs["sortBy"] = "must be project_name, created_at or funding_needed"
		}
		opts.SortBy = catalog.SortField(raw)
	}
	if raw, ok := c.GetQuery("sort_order"); ok {
		if raw != string(catalog.SortAsc) && raw != string(catalog.SortDesc) {
			errs["sortOrder"] = "must be asc or desc"
		}
		opts.SortOrder = catalog.SortOrder(raw)
	}

	if len(errs) > 0 {
		return opts, errs
	}
	return opts, nil
}

// listPending handles GET /api/admin/pending-projects
func (h *Handler) listPending(c *gin.Context) {
	opts, err := BindListOptions(c)
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	page, err := h.service.ListPending(c.Request.Context(), opts.Page, opts.PageSize)
	if err != nil {
		h.respondError(c, err, "Failed to list pending projects")
		return
	}
	c.JSON(http.StatusOK, page)
}

// listAll handles GET /api/admin/all-projects
func (h *Handler) listAll(c *gin.Context) {
	opts, err := BindListOptions(c)
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	status := catalog.WorkflowStatus(c.Query("workflow_status"))
	if status != "" && !status.Valid() {
		h.respondError(c, catalog.ValidationErrors{"workflowStatus": "unknown workflow status"}, "")
		return
	}
	page, err := h.service.ListAll(c.Request.Context(), opts.Page, opts.PageSize, status)
	if err != nil {
		h.respondError(c, err, "Failed to list projects")
		return
	}
	c.JSON(http.StatusOK, page)
}

// get handles GET /api/admin/projects/:id
func (h *Handler) get(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}
	project, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to get project")
		return
	}
	c.JSON(http.StatusOK, project)
}

// update handles PATCH /api/admin/projects/:id
func (h *Handler) update(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.service.Update(c.Request.Context(), id, &req, auth.Actor(c))
	if err != nil {
		h.respondError(c, err, "Failed to update project")
		return
	}
	c.JSON(http.StatusOK, project)
}

// review builds the handler for one reviewer decision.
func (h *Handler) review(action func(*gin.Context) workflows.ReviewAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.projectID(c)
		if !ok {
			return
		}
		project, err := h.service.Review(c.Request.Context(), id, action(c), auth.Actor(c))
		if err != nil {
			h.respondError(c, err, "Failed to review project")
			return
		}
		c.JSON(http.StatusOK, project)
	}
}

// history handles GET /api/admin/projects/:id/history
func (h *Handler) history(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}
	events, err := h.service.History(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to get review history")
		return
	}
	c.JSON(http.StatusOK, events)
}
