package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/landrecords/internal/logger"
	"github.com/stwalsh4118/landrecords/internal/metrics"
)

func init() {
	// Set Gin to test mode to reduce noise in tests
	gin.SetMode(gin.TestMode)
}

func TestRequestID(t *testing.T) {
	t.Run("generates new request ID", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, GetRequestID(c))
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		headerID := w.Header().Get(RequestIDHeader)
		assert.NotEmpty(t, headerID)
		assert.Equal(t, headerID, w.Body.String())
	})

	t.Run("uses existing request ID from header", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, GetRequestID(c))
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, "existing-request-id-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "existing-request-id-123", w.Body.String())
	})

	t.Run("replaces malformed request ID", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, GetRequestID(c))
		})

		for _, bad := range []string{strings.Repeat("a", MaxRequestIDLength+1), "has space", "tab\tid"} {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set(RequestIDHeader, bad)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.NotEqual(t, bad, w.Body.String())
			assert.NotEmpty(t, w.Body.String())
		}
	})

	t.Run("GetRequestID returns empty string if not set", func(t *testing.T) {
		assert.Empty(t, GetRequestID(&gin.Context{}))
	})
}

func TestCORS(t *testing.T) {
	allowedOrigins := []string{"http://localhost:3000", "http://localhost:3001"}

	newRouter := func() *gin.Engine {
		router := gin.New()
		router.Use(CORS(allowedOrigins))
		router.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "OK") })
		router.OPTIONS("/test", func(c *gin.Context) { c.String(http.StatusOK, "OK") })
		return router
	}

	t.Run("allows request from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("does not set CORS headers for disallowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "http://evil.com")
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("handles OPTIONS preflight for allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/test", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("rejects OPTIONS preflight for disallowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/test", nil)
		req.Header.Set("Origin", "http://evil.com")
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestLogger(t *testing.T) {
	t.Run("logs one line per request with request ID", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, "production", "info")

		router := gin.New()
		router.Use(RequestID())
		router.Use(Logger(log))
		router.GET("/test", func(c *gin.Context) {
			require.NotNil(t, GetLogger(c))
			c.String(http.StatusOK, "OK")
		})

		req := httptest.NewRequest(http.MethodGet, "/test?foo=bar", nil)
		req.Header.Set(RequestIDHeader, "req-1")
		router.ServeHTTP(httptest.NewRecorder(), req)

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "Request completed", entry["message"])
		assert.Equal(t, "req-1", entry["request_id"])
		assert.Equal(t, "foo=bar", entry["query"])
		assert.Equal(t, float64(http.StatusOK), entry["status"])
	})

	t.Run("client errors log at warn", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, "production", "info")

		router := gin.New()
		router.Use(Logger(log))
		router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "warn", entry["level"])
	})

	t.Run("GetLogger returns nil if not set", func(t *testing.T) {
		assert.Nil(t, GetLogger(&gin.Context{}))
	})
}

func TestRecovery(t *testing.T) {
	t.Run("recovers from panic and returns 500", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())
		router.Use(Recovery(logger.Nop()))
		router.GET("/panic", func(c *gin.Context) {
			panic("test panic")
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "INTERNAL_SERVER_ERROR")
		assert.Contains(t, w.Body.String(), "request_id")
	})

	t.Run("does not interfere with normal requests", func(t *testing.T) {
		router := gin.New()
		router.Use(Recovery(logger.Nop()))
		router.GET("/normal", func(c *gin.Context) { c.String(http.StatusOK, "OK") })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/normal", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "OK", w.Body.String())
	})
}

func TestBodyLimit(t *testing.T) {
	newRouter := func() *gin.Engine {
		router := gin.New()
		router.Use(BodyLimit(16))
		router.POST("/upload", func(c *gin.Context) {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				c.String(http.StatusRequestEntityTooLarge, err.Error())
				return
			}
			c.String(http.StatusOK, string(body))
		})
		return router
	}

	t.Run("passes small bodies", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("small")))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "small", w.Body.String())
	})

	t.Run("rejects declared oversize bodies", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(strings.Repeat("x", 64))))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "PAYLOAD_TOO_LARGE")
	})

	t.Run("stops undeclared oversize bodies on read", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload", io.NopCloser(strings.NewReader(strings.Repeat("x", 64))))
		req.ContentLength = -1
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	router := gin.New()
	router.Use(Metrics(m))
	router.GET("/land-records/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/land-records/abc", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodGet, "/land-records/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodGet, "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.HTTPInflight))
}

func TestMetrics_NilIsPassthrough(t *testing.T) {
	router := gin.New()
	router.Use(Metrics(nil))
	router.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "OK") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMiddlewareStack(t *testing.T) {
	log := logger.Nop()

	router := gin.New()
	router.Use(RequestID())
	router.Use(Logger(log))
	router.Use(Recovery(log))
	router.Use(CORS([]string{"http://localhost:3000"}))
	router.GET("/test", func(c *gin.Context) {
		assert.NotEmpty(t, GetRequestID(c))
		assert.NotNil(t, GetLogger(c))
		c.String(http.StatusOK, "OK")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
