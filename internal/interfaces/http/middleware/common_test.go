package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	t.Run("rejects cross-origin request with empty whitelist default", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Origin", "http://malicious.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("allows same-origin request with empty whitelist default", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("handles OPTIONS preflight with empty whitelist", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/test", nil)
		req.Header.Set("Origin", "http://some-origin.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCORSWithConfig(t *testing.T) {
	newRouter := func(cfg CORSConfig) *gin.Engine {
		router := gin.New()
		router.Use(CORSWithConfig(cfg))
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})
		return router
	}

	t.Run("allows whitelisted origin", func(t *testing.T) {
		router := newRouter(CORSConfig{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowMethods:     []string{"GET", "POST"},
			AllowHeaders:     []string{"Content-Type"},
			AllowCredentials: true,
		})

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("rejects non-whitelisted origin", func(t *testing.T) {
		router := newRouter(CORSConfig{
			AllowOrigins: []string{"http://localhost:3000"},
		})

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Origin", "http://evil.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard allows any origin without credentials header", func(t *testing.T) {
		router := newRouter(CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET"},
		})

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Origin", "http://anywhere.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("preflight against whitelisted origin returns CORS headers", func(t *testing.T) {
		router := newRouter(CORSConfig{
			AllowOrigins: []string{"http://localhost:3000"},
			AllowMethods: []string{"GET", "POST"},
			AllowHeaders: []string{"Content-Type", "X-Tenant-ID"},
		})

		req := httptest.NewRequest("OPTIONS", "/test", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Tenant-ID")
	})
}

func TestRequestID(t *testing.T) {
	newRouter := func() *gin.Engine {
		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, c.GetString("request_id"))
		})
		return router
	}

	t.Run("generates request ID when absent", func(t *testing.T) {
		router := newRouter()
		req := httptest.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		id := w.Header().Get("X-Request-ID")
		assert.NotEmpty(t, id)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("preserves incoming request ID", func(t *testing.T) {
		router := newRouter()
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("X-Request-ID", "client-supplied-id")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "client-supplied-id", w.Header().Get("X-Request-ID"))
		assert.Equal(t, "client-supplied-id", w.Body.String())
	})

	t.Run("IDs are unique across requests", func(t *testing.T) {
		router := newRouter()
		seen := make(map[string]bool)
		for i := 0; i < 10; i++ {
			req := httptest.NewRequest("GET", "/test", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			id := w.Header().Get("X-Request-ID")
			assert.False(t, seen[id], "duplicate request id %s", id)
			seen[id] = true
		}
	})
}
