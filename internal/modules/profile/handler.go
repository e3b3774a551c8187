package profile

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"daisy/internal/media"
	"daisy/internal/middleware"
	"daisy/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	images := protected.Group("/profile-images")
	{
		images.GET("", h.List)
		images.POST("", h.Create)
		images.GET("/:id", h.Get)
		images.PUT("/:id", h.Update)
		images.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), middleware.UserID(c), middleware.IsStaff(c))
	if err != nil {
		handleError(c, err)
		return
	}
	out := make([]Response, 0, len(items))
	for i := range items {
		out = append(out, toResponse(&items[i], h.service.URL))
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	p, err := h.service.Get(c.Request.Context(), middleware.UserID(c), middleware.IsStaff(c), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toResponse(p, h.service.URL))
}

// Create godoc
// @Summary		Upload the caller's profile image
// @Tags		Profile
// @Accept		multipart/form-data
// @Accept		json
// @Security	BearerAuth
// @Param		image			formData	file	false	"image file"
// @Param		image_base64	formData	string	false	"data:image/...;base64,..."
// @Router		/profile-images [POST]
func (h *Handler) Create(c *gin.Context) {
	img, err := readUpload(c)
	if err != nil {
		handleError(c, err)
		return
	}
	p, err := h.service.Create(c.Request.Context(), middleware.UserID(c), img)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toResponse(p, h.service.URL))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	img, err := readUpload(c)
	if err != nil {
		handleError(c, err)
		return
	}
	p, err := h.service.Update(c.Request.Context(), middleware.UserID(c), middleware.IsStaff(c), id, img)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toResponse(p, h.service.URL))
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), middleware.UserID(c), middleware.IsStaff(c), id); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var errBadBody = errors.New("invalid request body")

// readUpload accepts a multipart "image" file, or an "image_base64" data URI
// sent as a form field or JSON. It returns nil when neither is present.
func readUpload(c *gin.Context) (*Upload, error) {
	var encoded string
	if c.ContentType() == gin.MIMEJSON {
		var req ImageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, errBadBody
		}
		encoded = req.ImageBase64
	} else {
		fh, err := c.FormFile("image")
		switch {
		case err == nil:
			img, err := media.ReadImage(fh)
			if err != nil {
				return nil, err
			}
			return &Upload{Name: fh.Filename, Image: img}, nil
		case !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
			return nil, errBadBody
		}
		encoded = c.PostForm("image_base64")
	}

	if encoded == "" {
		return nil, nil
	}
	img, err := media.DecodeDataURI(encoded)
	if err != nil {
		return nil, err
	}
	return &Upload{Image: img, DataURI: true}, nil
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Not found")
		return 0, false
	}
	return id, true
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Profile image not found")
	case errors.Is(err, ErrAlreadyExists):
		response.Error(c, http.StatusConflict, response.CodeConflict, "Profile image already exists")
	case errors.Is(err, errBadBody):
		response.Error(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body")
	case errors.Is(err, media.ErrNotImage), errors.Is(err, media.ErrEmptyFile),
		errors.Is(err, media.ErrFileTooLarge), errors.Is(err, media.ErrInvalidDataURI),
		errors.Is(err, media.ErrUnsafeExt):
		response.Error(c, http.StatusBadRequest, response.CodeInvalidImage, err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "An internal error occurred")
	}
}
