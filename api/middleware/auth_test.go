package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func authRouter(keys []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(keys))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name    string
		keys    []string
		headers map[string]string
		want    int
	}{
		{
			name: "no keys configured is open access",
			keys: nil,
			want: http.StatusOK,
		},
		{
			name:    "valid X-API-Key",
			keys:    []string{"secret-1"},
			headers: map[string]string{"X-API-Key": "secret-1"},
			want:    http.StatusOK,
		},
		{
			name:    "valid bearer token",
			keys:    []string{"secret-1"},
			headers: map[string]string{"Authorization": "Bearer secret-1"},
			want:    http.StatusOK,
		},
		{
			name: "missing key",
			keys: []string{"secret-1"},
			want: http.StatusUnauthorized,
		},
		{
			name:    "wrong key",
			keys:    []string{"secret-1"},
			headers: map[string]string{"X-API-Key": "nope"},
			want:    http.StatusUnauthorized,
		},
		{
			name:    "malformed authorization header",
			keys:    []string{"secret-1"},
			headers: map[string]string{"Authorization": "secret-1"},
			want:    http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := authRouter(tt.keys)
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}
