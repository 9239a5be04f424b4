package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwtauth "github.com/hmsd/hospital-api/pkg/auth"
	"github.com/hmsd/hospital-api/pkg/logger"
	"github.com/hmsd/hospital-api/pkg/security"

	"github.com/hmsd/hospital-api/internal/repository/repotest"
	authService "github.com/hmsd/hospital-api/internal/service/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	svc := authService.NewService(
		repotest.NewUserRepo(),
		repotest.NewDoctorProfileRepo(),
		repotest.NewPatientProfileRepo(),
		jwtauth.NewJWTService("test-secret", time.Hour),
		security.NewBcryptHasher(4),
		logger.NewLogger(nil),
	)
	return NewHandler(svc)
}

func postJSON(h *Handler, path, body string) *httptest.ResponseRecorder {
	r := gin.New()
	h.RegisterPublicRoutes(r.Group("/"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterReturnsOK(t *testing.T) {
	h := newTestHandler(t)

	w := postJSON(h, "/register", `{"username":"pat@example.com","password":"secret","role":"patient"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"success"`)
}

func TestRegisterRejectsBadBody(t *testing.T) {
	h := newTestHandler(t)

	w := postJSON(h, "/register", `{"username":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginBadCredentialsReturnsUnauthorized(t *testing.T) {
	h := newTestHandler(t)

	w := postJSON(h, "/login", `{"username":"nobody@example.com","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
