package catalog

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"daisy/internal/media"
	"daisy/internal/middleware"
	"daisy/internal/pkg/response"
	"daisy/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts reads on public and writes on admin.
func (h *Handler) RegisterRoutes(public, admin *gin.RouterGroup) {
	if public != nil {
		public.GET("/category-icons", h.ListIcons)
		public.GET("/category-icons/:id", h.GetIcon)
		public.GET("/categories", h.ListCategories)
		public.GET("/categories/:id", h.GetCategory)
		public.GET("/visualize-types", h.ListVisualizeTypes)
		public.GET("/visualize-types/:id", h.GetVisualizeType)
	}

	if admin != nil {
		admin.POST("/category-icons", h.CreateIcon)
		admin.PUT("/category-icons/:id", h.UpdateIcon)
		admin.DELETE("/category-icons/:id", h.DeleteIcon)
		admin.POST("/categories", h.CreateCategory)
		admin.PUT("/categories/:id", h.UpdateCategory)
		admin.DELETE("/categories/:id", h.DeleteCategory)
		admin.POST("/visualize-types", h.CreateVisualizeType)
		admin.PUT("/visualize-types/:id", h.UpdateVisualizeType)
		admin.DELETE("/visualize-types/:id", h.DeleteVisualizeType)
	}
}

/* ---------- CATEGORY ICONS ---------- */

// ListIcons
// @Summary		List category icons
// @Tags		Catalog
// @Param		title	query	string	false	"exact title"
// @Router		/category-icons [GET]
func (h *Handler) ListIcons(c *gin.Context) {
	icons, err := h.service.ListIcons(c.Request.Context(), c.Query("title"))
	if err != nil {
		handleError(c, err)
		return
	}
	out := make([]IconResponse, 0, len(icons))
	for i := range icons {
		out = append(out, toIconResponse(&icons[i], h.service.URL))
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) GetIcon(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	icon, err := h.service.GetIcon(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toIconResponse(icon, h.service.URL))
}

// CreateIcon
// @Summary		Upload a category icon
// @Tags		Catalog
// @Security	BearerAuth
// @Accept		multipart/form-data
// @Param		title	formData	string	true	"unique title"
// @Param		image	formData	file	true	"icon image"
// @Router		/category-icons [POST]
func (h *Handler) CreateIcon(c *gin.Context) {
	title := strings.TrimSpace(c.PostForm("title"))
	if details := checkTitle(title); details != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, "Invalid request", details)
		return
	}
	img, err := formUpload(c, "image")
	if err != nil {
		handleError(c, err)
		return
	}

	icon, err := h.service.CreateIcon(c.Request.Context(), middleware.UserID(c), title, img)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toIconResponse(icon, h.service.URL))
}

func (h *Handler) UpdateIcon(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var title *string
	if v, present := c.GetPostForm("title"); present {
		v = strings.TrimSpace(v)
		if details := checkTitle(v); details != nil {
			response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, "Invalid request", details)
			return
		}
		title = &v
	}
	img, err := formUpload(c, "image")
	if err != nil {
		handleError(c, err)
		return
	}

	icon, err := h.service.UpdateIcon(c.Request.Context(), middleware.UserID(c), id, title, img)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toIconResponse(icon, h.service.URL))
}

func (h *Handler) DeleteIcon(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteIcon(c.Request.Context(), middleware.UserID(c), id); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

/* ---------- CATEGORIES ---------- */

func (h *Handler) ListCategories(c *gin.Context) {
	cats, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	out := make([]CategoryResponse, 0, len(cats))
	for i := range cats {
		out = append(out, toCategoryResponse(&cats[i], h.service.URL))
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) GetCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	cat, err := h.service.GetCategory(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toCategoryResponse(cat, h.service.URL))
}

func (h *Handler) bindCategory(c *gin.Context) (CategoryRequest, bool) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
		return req, false
	}
	req.Title = strings.TrimSpace(req.Title)
	if details := validator.Validate(&req); details != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body", details)
		return req, false
	}
	return req, true
}

func (h *Handler) CreateCategory(c *gin.Context) {
	req, ok := h.bindCategory(c)
	if !ok {
		return
	}
	cat, err := h.service.CreateCategory(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toCategoryResponse(cat, h.service.URL))
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	req, ok := h.bindCategory(c)
	if !ok {
		return
	}
	cat, err := h.service.UpdateCategory(c.Request.Context(), middleware.UserID(c), id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toCategoryResponse(cat, h.service.URL))
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteCategory(c.Request.Context(), middleware.UserID(c), id); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

/* ---------- VISUALIZE TYPES ---------- */

func (h *Handler) ListVisualizeTypes(c *gin.Context) {
	types, err := h.service.ListVisualizeTypes(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	out := make([]VisualizeTypeResponse, 0, len(types))
	for i := range types {
		out = append(out, toVisualizeTypeResponse(&types[i], h.service.URL))
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) GetVisualizeType(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	vt, err := h.service.GetVisualizeType(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toVisualizeTypeResponse(vt, h.service.URL))
}

// bindVisualizeType reads the multipart form. On create title and alias
// are required; on update every field is optional.
func (h *Handler) bindVisualizeType(c *gin.Context, create bool) (VisualizeTypeInput, bool) {
	var in VisualizeTypeInput
	details := map[string]string{}

	optional := func(field string, max int) *string {
		v, present := c.GetPostForm(field)
		if !present {
			if create && max > 0 {
				details[field] = "required"
			}
			return nil
		}
		v = strings.TrimSpace(v)
		switch {
		case max > 0 && v == "":
			details[field] = "required"
		case max > 0 && len([]rune(v)) > max:
			details[field] = "max"
		}
		return &v
	}
	in.Title = optional("title", 100)
	in.Alias = optional("alias", 100)
	in.Description = optional("description", 0)
	if raw, present := c.GetPostForm("attribute"); present && strings.TrimSpace(raw) != "" {
		in.Attribute = datatypes.JSON(raw)
	}

	if len(details) > 0 {
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, "Invalid request", details)
		return in, false
	}

	var err error
	for _, f := range []struct {
		name string
		dst  **Upload
	}{
		{"image", &in.Image},
		{"sample_image", &in.SampleImage},
		{"setting_image", &in.SettingImage},
	} {
		if *f.dst, err = formUpload(c, f.name); err != nil {
			handleError(c, err)
			return in, false
		}
	}
	return in, true
}

// CreateVisualizeType
// @Summary		Create a visualize type
// @Tags		Catalog
// @Security	BearerAuth
// @Accept		multipart/form-data
// @Param		title			formData	string	true	"unique title"
// @Param		alias			formData	string	true	"unique alias"
// @Param		description		formData	string	false	"description"
// @Param		attribute		formData	string	false	"JSON document"
// @Param		image			formData	file	false	"icon"
// @Param		sample_image	formData	file	false	"sample"
// @Param		setting_image	formData	file	false	"settings preview"
// @Router		/visualize-types [POST]
func (h *Handler) CreateVisualizeType(c *gin.Context) {
	in, ok := h.bindVisualizeType(c, true)
	if !ok {
		return
	}
	vt, err := h.service.CreateVisualizeType(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toVisualizeTypeResponse(vt, h.service.URL))
}

func (h *Handler) UpdateVisualizeType(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	in, ok := h.bindVisualizeType(c, false)
	if !ok {
		return
	}
	vt, err := h.service.UpdateVisualizeType(c.Request.Context(), middleware.UserID(c), id, in)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toVisualizeTypeResponse(vt, h.service.URL))
}

func (h *Handler) DeleteVisualizeType(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteVisualizeType(c.Request.Context(), middleware.UserID(c), id); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

/* ---------- HELPERS ---------- */

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Not found")
		return 0, false
	}
	return id, true
}

func checkTitle(title string) map[string]string {
	switch {
	case title == "":
		return map[string]string{"title": "required"}
	case len([]rune(title)) > 100:
		return map[string]string{"title": "max"}
	}
	return nil
}

// formUpload returns nil when the field is absent.
func formUpload(c *gin.Context, field string) (*Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	img, err := media.ReadImage(fh)
	if err != nil {
		return nil, err
	}
	return &Upload{Name: fh.Filename, Image: img}, nil
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Not found")
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, response.CodeConflict, "Title or alias already exists")
	case errors.Is(err, ErrInUse):
		response.Error(c, http.StatusConflict, response.CodeConflict, "Still referenced by other records")
	case errors.Is(err, ErrIconNotFound):
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body",
			map[string]string{"category_icon": "exists"})
	case errors.Is(err, ErrImageMissing):
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, "Invalid request",
			map[string]string{"image": "required"})
	case errors.Is(err, ErrInvalidJSON):
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, "Invalid request",
			map[string]string{"attribute": "json"})
	case errors.Is(err, media.ErrNotImage), errors.Is(err, media.ErrEmptyFile),
		errors.Is(err, media.ErrFileTooLarge), errors.Is(err, media.ErrInvalidDataURI):
		response.Error(c, http.StatusBadRequest, response.CodeInvalidImage, err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "An internal error occurred")
	}
}
