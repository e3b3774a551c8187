package project

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"daisy/internal/domain"
	"daisy/internal/middleware"
	"daisy/internal/pkg/pagination"
	"daisy/internal/pkg/response"
	"daisy/internal/pkg/validator"
)

type Handler struct {
	service  *Service
	pageSize int
}

func NewHandler(service *Service, pageSize int) *Handler {
	return &Handler{service: service, pageSize: pageSize}
}

// RegisterRoutes mounts the public reads on public and everything that
// needs a user on protected.
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	if public != nil {
		public.GET("/projects", h.List)
		public.GET("/projects/:id", h.Get)
	}

	if protected != nil {
		my := protected.Group("/my/projects")
		{
			my.GET("", h.ListMine)
			my.GET("/:id", h.GetMine)
		}
		protected.POST("/projects", h.Create)
		protected.PUT("/projects/:id", h.Replace)
		protected.PATCH("/projects/:id", h.Patch)
		protected.DELETE("/projects/:id", h.Delete)
	}
}

func actor(c *gin.Context) Actor {
	return Actor{UserID: middleware.UserID(c), Staff: middleware.IsStaff(c)}
}

// List godoc
// @Summary		Published projects
// @Tags		Projects
// @Param		page	query	int	false	"page number"
// @Router		/projects [GET]
func (h *Handler) List(c *gin.Context) {
	p, err := pagination.FromQuery(c, h.pageSize)
	if err != nil {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Invalid page")
		return
	}
	projects, p, total, err := pagination.Fetch(p, func(p pagination.Params) ([]*domain.Project, int64, error) {
		return h.service.ListPublished(c.Request.Context(), p)
	})
	if err != nil {
		handleError(c, err)
		return
	}
	h.page(c, p, total, h.service.toListItems(projects))
}

// Get godoc
// @Summary		Project detail
// @Description	Counts a hit on every call.
// @Tags		Projects
// @Router		/projects/{id} [GET]
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	p, err := h.service.Retrieve(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, h.service.toResponse(p))
}

// ListMine godoc
// @Summary		Projects of the caller
// @Tags		Projects
// @Security	BearerAuth
// @Param		status	query	string	false	"draft or published"
// @Param		page	query	int		false	"page number"
// @Router		/my/projects [GET]
func (h *Handler) ListMine(c *gin.Context) {
	status := domain.ProjectStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, "Invalid filter",
			map[string]string{"status": "oneof"})
		return
	}
	p, err := pagination.FromQuery(c, h.pageSize)
	if err != nil {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Invalid page")
		return
	}
	projects, p, total, err := pagination.Fetch(p, func(p pagination.Params) ([]*domain.Project, int64, error) {
		return h.service.ListMine(c.Request.Context(), middleware.UserID(c), status, p)
	})
	if err != nil {
		handleError(c, err)
		return
	}
	h.page(c, p, total, h.service.toListItems(projects))
}

func (h *Handler) GetMine(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	p, err := h.service.RetrieveMine(c.Request.Context(), actor(c), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, h.service.toResponse(p))
}

// Create godoc
// @Summary		Create a project with its visualizes
// @Tags		Projects
// @Security	BearerAuth
// @Param		request	body	CreateRequest	true	"project"
// @Router		/projects [POST]
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}
	if details := validator.Validate(&req); details != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body", details)
		return
	}

	p, err := h.service.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, h.service.toResponse(p))
}

// Replace handles PUT; the title has to be present.
func (h *Handler) Replace(c *gin.Context) { h.update(c, true) }

func (h *Handler) Patch(c *gin.Context) { h.update(c, false) }

func (h *Handler) update(c *gin.Context, full bool) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return
	}
	if full && req.Title == nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body",
			map[string]string{"title": "required"})
		return
	}
	if details := validator.Validate(&req); details != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body", details)
		return
	}

	p, err := h.service.Update(c.Request.Context(), actor(c), id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, h.service.toResponse(p))
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), actor(c), id); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) page(c *gin.Context, p pagination.Params, total int64, results any) {
	page, err := pagination.Build(c, p, total, results)
	if errors.Is(err, pagination.ErrInvalidPage) {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Invalid page")
		return
	}
	response.Success(c, http.StatusOK, page)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Project not found")
		return 0, false
	}
	return id, true
}

func handleError(c *gin.Context, err error) {
	var verr *ValidationError
	var ierr *ImageError
	switch {
	case errors.As(err, &verr):
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body", verr.Fields)
	case errors.As(err, &ierr):
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeInvalidImage, ierr.Err.Error(),
			map[string]string{ierr.Field: "image"})
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Project not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, "You do not have permission to perform this action")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "An internal error occurred")
	}
}
