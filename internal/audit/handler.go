package audit

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"daisy/internal/pkg/pagination"
	"daisy/internal/pkg/response"
)

type Handler struct {
	rec      *Recorder
	pageSize int
}

func NewHandler(rec *Recorder, pageSize int) *Handler {
	return &Handler{rec: rec, pageSize: pageSize}
}

// RegisterRoutes mounts the listing on an admin-only group.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/audit", h.List)
}

// List godoc
// @Summary		Audit history
// @Tags		Admin
// @Security	BearerAuth
// @Param		action			query	string	false	"add, change or delete"
// @Param		content_type	query	string	false	"entity kind, e.g. project"
// @Param		object_id		query	int		false	"entity id"
// @Param		page			query	int		false	"page number"
// @Router		/admin/audit [GET]
func (h *Handler) List(c *gin.Context) {
	f := Filter{
		Action:      Action(c.Query("action")),
		ContentType: c.Query("content_type"),
	}
	if f.Action != "" && !f.Action.Valid() {
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, "Invalid filter",
			map[string]string{"action": "oneof"})
		return
	}
	if raw := c.Query("object_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, "Invalid filter",
				map[string]string{"object_id": "numeric"})
			return
		}
		f.ObjectID = id
	}

	p, err := pagination.FromQuery(c, h.pageSize)
	if err != nil {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Invalid page")
		return
	}

	entries, p, total, err := pagination.Fetch(p, func(p pagination.Params) ([]Entry, int64, error) {
		return h.rec.List(c.Request.Context(), f, p)
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Failed to load audit entries")
		return
	}

	page, err := pagination.Build(c, p, total, entries)
	if errors.Is(err, pagination.ErrInvalidPage) {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Invalid page")
		return
	}
	response.Success(c, http.StatusOK, page)
}
