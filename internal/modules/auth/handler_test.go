package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daisy/internal/middleware"
	"daisy/internal/pkg/jwt"
	"daisy/internal/pkg/testdb"
	"daisy/internal/repository"
)

func setupRouter(t *testing.T) (*gin.Engine, *jwt.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testdb.Open(t)
	jwtSvc := jwt.New("test-secret", time.Hour)
	h := NewHandler(NewService(repository.NewUserRepository(db), jwtSvc))

	r := gin.New()
	v1 := r.Group("/api/v1")
	h.RegisterPublicRoutes(v1)
	h.RegisterProtectedRoutes(v1.Group("", middleware.JWTAuth(jwtSvc)))
	return r, jwtSvc
}

func doJSON(r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_RegisterLoginMe(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(r, http.MethodPost, "/api/v1/auth/register",
		gin.H{"email": "ann@example.com", "username": "ann", "password": "password123"}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPost, "/api/v1/auth/register",
		gin.H{"email": "ANN@example.com", "password": "password123"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodPost, "/api/v1/auth/login",
		gin.H{"email": "nobody@example.com", "password": "password123"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodPost, "/api/v1/auth/login",
		gin.H{"email": "ann@example.com", "password": "nope-nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/api/v1/auth/login",
		gin.H{"email": "ann@example.com", "password": "password123"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var login struct {
		Data AuthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.Data.Token)

	w = doJSON(r, http.MethodPut, "/api/v1/auth/me/username", gin.H{"username": "annie"}, login.Data.Token)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/v1/auth/me", nil, login.Data.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Data UserPublic `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, UserPublic{ID: login.Data.User.ID, Email: "ann@example.com", Username: "annie"}, me.Data)
}

func TestHandler_RegisterValidation(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(r, http.MethodPost, "/api/v1/auth/register", gin.H{"email": "not-an-email", "password": "password123"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/v1/auth/register", gin.H{"email": "a@b.co", "password": "short"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_MeRequiresToken(t *testing.T) {
	r, _ := setupRouter(t)
	w := doJSON(r, http.MethodGet, "/api/v1/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
