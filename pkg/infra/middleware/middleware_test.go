package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/datasphere/pkg/utils/errors"
	"github.com/kart-io/datasphere/pkg/utils/id"
	"github.com/kart-io/datasphere/pkg/utils/json"
	"github.com/kart-io/datasphere/pkg/utils/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID(t *testing.T) {
	var seen string
	r := gin.New()
	r.Use(RequestID())
	r.GET("/test", func(c *gin.Context) {
		seen = GetRequestID(c.Request.Context())
	})

	t.Run("generates id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		requestID := w.Header().Get(HeaderXRequestID)
		assert.True(t, id.IsValidULID(requestID))
		assert.Equal(t, requestID, seen)
	})

	t.Run("preserves existing id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(HeaderXRequestID, "existing-request-id-12345")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "existing-request-id-12345", w.Header().Get(HeaderXRequestID))
		assert.Equal(t, "existing-request-id-12345", seen)
	})
}

func TestRecovery(t *testing.T) {
	var recovered interface{}
	r := gin.New()
	r.Use(RecoveryWithConfig(RecoveryConfig{
		OnPanic: func(_ *gin.Context, err interface{}, _ []byte) { recovered = err },
	}))
	r.GET("/boom", func(_ *gin.Context) { panic("secret detail") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "secret detail", recovered)
	assert.NotContains(t, w.Body.String(), "secret detail")

	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, errors.ErrPanic.Code, body.Code)
}

func TestLogger_PassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Logger())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for path, want := range map[string]int{"/health": http.StatusOK, "/missing": http.StatusNotFound} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code)
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORSWithConfig(CORSConfig{
		AllowOrigins:     []string{"https://datasphere.example"},
		AllowCredentials: true,
	}))
	r.GET("/api/datasets", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name       string
		method     string
		origin     string
		wantCode   int
		wantOrigin string
	}{
		{"allowed origin", http.MethodGet, "https://datasphere.example", http.StatusOK, "https://datasphere.example"},
		{"foreign origin", http.MethodGet, "https://evil.example", http.StatusOK, ""},
		{"preflight", http.MethodOptions, "https://datasphere.example", http.StatusNoContent, "https://datasphere.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/datasets", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORSConfig_Validate(t *testing.T) {
	assert.Error(t, CORSConfig{}.Validate())
	assert.Error(t, CORSConfig{AllowOrigins: []string{"*"}, AllowCredentials: true}.Validate())
	assert.NoError(t, CORSConfig{AllowOrigins: []string{"*"}}.Validate())
}
