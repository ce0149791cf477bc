package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"jobboard-backend/internal/shared/auth"
)

func signedToken(t *testing.T, claims auth.Claims) string {
	t.Helper()
	token, err := auth.SignJWT(claims)
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	return token
}

func protectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Identity())
	r.GET("/api/v1/user/me", RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": UserIDFromContext(c), "role": UserRoleFromContext(c)})
	})
	r.POST("/api/v1/job/post", RequireRole("recruiter"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	r := protectedRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestIdentityFromCookie(t *testing.T) {
	r := protectedRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: signedToken(t, auth.Claims{Sub: "user-1", Role: "student"})})
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestIdentityFromBearerHeader(t *testing.T) {
	r := protectedRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, auth.Claims{Sub: "user-1"}))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestIdentityIgnoresGarbageToken(t *testing.T) {
	r := protectedRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "not.a.jwt"})
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for forged token, got %d", resp.Code)
	}
}

func TestRequireRole(t *testing.T) {
	r := protectedRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/job/post", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: signedToken(t, auth.Claims{Sub: "user-1", Role: "student"})})
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for student, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/job/post", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: signedToken(t, auth.Claims{Sub: "user-2", Role: "recruiter"})})
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for recruiter, got %d", resp.Code)
	}
}

func TestRequireAuthAllowsOptions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Identity())
	r.OPTIONS("/api/v1/upload", RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/upload", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}
