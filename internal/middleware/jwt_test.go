package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/learnedu/learnedu-backend/internal/config"
	"github.com/learnedu/learnedu-backend/internal/model"
	"github.com/learnedu/learnedu-backend/internal/service"
	"github.com/learnedu/learnedu-backend/internal/store"
)

func newTestAuthService(t *testing.T) *service.AuthService {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4,
	}
	return service.NewAuthService(cfg, nil, store.NewMemoryKV())
}

func tokenFor(t *testing.T, auth *service.AuthService, role model.Role) string {
	t.Helper()
	token, err := auth.GenerateToken(context.Background(), &model.User{ID: uuid.New(), Role: role})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func TestRequireAdminJWT(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := newTestAuthService(t)

	r := gin.New()
	r.PATCH("/admin/exams/:exam_id/publish", RequireAdminJWT(auth), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	call := func(token string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/admin/exams/"+uuid.NewString()+"/publish", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := call(""); code != http.StatusUnauthorized {
		t.Errorf("missing token = %d, want 401", code)
	}
	if code := call(tokenFor(t, auth, model.RoleStudent)); code != http.StatusForbidden {
		t.Errorf("student token = %d, want 403", code)
	}
	if code := call(tokenFor(t, auth, model.RoleAdmin)); code != http.StatusOK {
		t.Errorf("admin token = %d, want 200", code)
	}
}

func TestRequireStudentJWTAdmitsAnyAuthenticatedRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := newTestAuthService(t)

	r := gin.New()
	r.GET("/exams/mine", RequireStudentJWT(auth), func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})

	for _, role := range []model.Role{model.RoleStudent, model.RoleAdmin} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/exams/mine", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, auth, role))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("role %s = %d, want 200", role, w.Code)
		}
	}
}
