package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestAPIKeyAuthAcceptsBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/op", APIKeyAuth("secret"), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	cases := []struct {
		name   string
		header map[string]string
		want   int
	}{
		{"bearer", map[string]string{"Authorization": "Bearer secret"}, http.StatusNoContent},
		{"lowercase scheme", map[string]string{"Authorization": "bearer secret"}, http.StatusNoContent},
		{"wrong bearer", map[string]string{"Authorization": "Bearer nope"}, http.StatusForbidden},
		{"basic scheme", map[string]string{"Authorization": "Basic c2VjcmV0"}, http.StatusUnauthorized},
		{"header wins", map[string]string{"X-API-Key": "secret", "Authorization": "Bearer nope"}, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := serve(r, http.MethodGet, "/op", tc.header); w.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, w.Code)
			}
		})
	}
}

func TestAPIKeyAuthDisabledWithoutKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/op", APIKeyAuth(""), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	if w := serve(r, http.MethodGet, "/op", nil); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
}
