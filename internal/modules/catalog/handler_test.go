package catalog

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"daisy/internal/audit"
	"daisy/internal/domain"
	"daisy/internal/media"
	"daisy/internal/pkg/testdb"
	"daisy/internal/repository"
)

var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89,
}

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	store  *media.LocalStore
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testdb.Open(t)
	store := media.NewLocalStore(t.TempDir(), "/media")
	files := media.NewLifecycle(store, zap.NewNop())
	svc := NewService(repository.NewCatalogRepository(db), files, audit.NewRecorder(db, zap.NewNop()))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", int64(1))
		c.Set("role", "admin")
		c.Next()
	})
	v1 := r.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(v1, v1)
	return &testEnv{router: r, db: db, store: store}
}

type part struct {
	field, filename string
	data            []byte
}

func (e *testEnv) multipart(method, path string, fields map[string]string, files ...part) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	for _, f := range files {
		fw, _ := mw.CreateFormFile(f.field, f.filename)
		_, _ = fw.Write(f.data)
	}
	_ = mw.Close()

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) json(method, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var body struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body.Data
}

func storedPath(url string) string {
	return strings.TrimPrefix(url, "/media/")
}

func TestCategoryIcon_ReplaceImageRemovesOldFile(t *testing.T) {
	e := setup(t)

	w := e.multipart(http.MethodPost, "/api/v1/category-icons", map[string]string{"title": "chart"},
		part{"image", "one.png", pngBytes})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[IconResponse](t, w)
	first := storedPath(created.Image)
	assert.True(t, strings.HasPrefix(first, media.DirCategoryIcons+"/"))
	assert.True(t, e.store.Exists(first))

	w = e.multipart(http.MethodPut, "/api/v1/category-icons/"+itoa(created.ID), nil,
		part{"image", "two.png", pngBytes})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	second := storedPath(decode[IconResponse](t, w).Image)

	assert.NotEqual(t, first, second)
	assert.False(t, e.store.Exists(first))
	assert.True(t, e.store.Exists(second))

	// title only keeps the file
	w = e.multipart(http.MethodPut, "/api/v1/category-icons/"+itoa(created.ID), map[string]string{"title": "renamed"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "renamed", decode[IconResponse](t, w).Title)
	assert.True(t, e.store.Exists(second))

	w = e.multipart(http.MethodDelete, "/api/v1/category-icons/"+itoa(created.ID), nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, e.store.Exists(second))

	var entries []audit.Entry
	require.NoError(t, e.db.Order("id").Find(&entries).Error)
	require.Len(t, entries, 4)
	assert.Equal(t, `Added category icon "CategoryIcon - `+itoa(created.ID)+`"`, entries[0].Message)
	assert.Equal(t, audit.ActionDelete, entries[3].Action)
}

func TestCategoryIcon_Validation(t *testing.T) {
	e := setup(t)

	w := e.multipart(http.MethodPost, "/api/v1/category-icons", map[string]string{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"image":"required"`)

	w = e.multipart(http.MethodPost, "/api/v1/category-icons", map[string]string{"title": "x"},
		part{"image", "notes.txt", []byte("plain text, not an image")})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_IMAGE")

	w = e.multipart(http.MethodPost, "/api/v1/category-icons", map[string]string{"title": ""},
		part{"image", "a.png", pngBytes})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.Equal(t, http.StatusCreated, e.multipart(http.MethodPost, "/api/v1/category-icons",
		map[string]string{"title": "dup"}, part{"image", "a.png", pngBytes}).Code)
	w = e.multipart(http.MethodPost, "/api/v1/category-icons",
		map[string]string{"title": "dup"}, part{"image", "b.png", pngBytes})
	assert.Equal(t, http.StatusConflict, w.Code)

	orphans, err := media.Orphans(e.store.Root(), map[string]struct{}{})
	require.NoError(t, err)
	// the rejected duplicate left no file behind
	assert.Len(t, orphans, 1)
}

func TestCategory_CRUD(t *testing.T) {
	e := setup(t)

	icon := decode[IconResponse](t, e.multipart(http.MethodPost, "/api/v1/category-icons",
		map[string]string{"title": "i"}, part{"image", "a.png", pngBytes}))

	w := e.json(http.MethodPost, "/api/v1/categories", gin.H{"title": "Sales", "code": "S1", "category_icon": 999})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "category_icon")

	w = e.json(http.MethodPost, "/api/v1/categories", gin.H{"title": "Sales", "code": "TOOLONG", "category_icon": icon.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"max"`)

	w = e.json(http.MethodPost, "/api/v1/categories", gin.H{"title": "Sales", "code": "S1", "category_icon": icon.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	cat := decode[CategoryResponse](t, w)
	require.NotNil(t, cat.Icon)
	assert.Equal(t, icon.Image, cat.Icon.Image)

	// icon in use cannot be deleted
	w = e.multipart(http.MethodDelete, "/api/v1/category-icons/"+itoa(icon.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.json(http.MethodPut, "/api/v1/categories/"+itoa(cat.ID), gin.H{"title": "Revenue", "category_icon": icon.ID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Revenue", decode[CategoryResponse](t, w).Title)

	w = e.json(http.MethodGet, "/api/v1/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]CategoryResponse](t, w), 1)

	require.Equal(t, http.StatusNoContent, e.json(http.MethodDelete, "/api/v1/categories/"+itoa(cat.ID), nil).Code)
	assert.Equal(t, http.StatusNotFound, e.json(http.MethodGet, "/api/v1/categories/"+itoa(cat.ID), nil).Code)
}

func TestVisualizeType_ImagesReplacedIndependently(t *testing.T) {
	e := setup(t)

	w := e.multipart(http.MethodPost, "/api/v1/visualize-types",
		map[string]string{"title": "Bar", "alias": "bar", "attribute": `{"axis":"x"}`},
		part{"image", "i.png", pngBytes}, part{"sample_image", "s.png", pngBytes}, part{"setting_image", "c.png", pngBytes})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	vt := decode[VisualizeTypeResponse](t, w)
	assert.JSONEq(t, `{"axis":"x"}`, string(vt.Attribute))
	assert.Contains(t, vt.SampleImage, media.DirSampleData)

	w = e.multipart(http.MethodPut, "/api/v1/visualize-types/"+itoa(vt.ID), nil,
		part{"sample_image", "s2.png", pngBytes})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[VisualizeTypeResponse](t, w)

	assert.Equal(t, vt.Image, updated.Image)
	assert.Equal(t, vt.SettingImage, updated.SettingImage)
	assert.NotEqual(t, vt.SampleImage, updated.SampleImage)
	assert.False(t, e.store.Exists(storedPath(vt.SampleImage)))
	assert.True(t, e.store.Exists(storedPath(vt.Image)))

	w = e.multipart(http.MethodPut, "/api/v1/visualize-types/"+itoa(vt.ID), map[string]string{"attribute": "{broken"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.multipart(http.MethodPost, "/api/v1/visualize-types", map[string]string{"title": "Line"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"alias":"required"`)

	require.Equal(t, http.StatusNoContent,
		e.multipart(http.MethodDelete, "/api/v1/visualize-types/"+itoa(vt.ID), nil).Code)
	for _, u := range []string{updated.Image, updated.SampleImage, updated.SettingImage} {
		assert.False(t, e.store.Exists(storedPath(u)))
	}
}

func TestVisualizeType_InUse(t *testing.T) {
	e := setup(t)
	vt := decode[VisualizeTypeResponse](t, e.multipart(http.MethodPost, "/api/v1/visualize-types",
		map[string]string{"title": "Pie", "alias": "pie"}))

	u := &domain.User{Email: "o@example.com", PasswordHash: "x"}
	require.NoError(t, e.db.Create(u).Error)
	p := &domain.Project{Title: "p", UserID: u.ID}
	require.NoError(t, e.db.Omit("User").Create(p).Error)
	require.NoError(t, e.db.Omit("VisualizeType").Create(&domain.Visualize{ProjectID: p.ID, Order: 1, VisualizeTypeID: vt.ID}).Error)

	w := e.multipart(http.MethodDelete, "/api/v1/visualize-types/"+itoa(vt.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
