package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newProductionChain mirrors the middleware order of the API router
func newProductionChain(log *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(Recovery(log), CorrelationID(), Logger(log))
	return router
}

func TestRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	panics := []struct {
		name      string
		value     interface{}
		errorText string
	}{
		{"StringPanic", "schedule without term", "schedule without term"},
		{"ErrorPanic", errors.New("nil loan"), "nil loan"},
	}

	for _, tc := range panics {
		t.Run(tc.name, func(t *testing.T) {
			var logBuffer bytes.Buffer
			router := newProductionChain(slog.New(slog.NewJSONHandler(&logBuffer, nil)))
			router.POST("/api/v1/loans/:id/payments", func(c *gin.Context) {
				panic(tc.value)
			})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/loans/3/payments", nil)
			req.Header.Set(CorrelationIDHeader, "corr-panic")
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusInternalServerError, rr.Code)

			var body struct {
				Error struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
				CorrelationID string `json:"correlation_id"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, "INTERNAL_SERVER_ERROR", body.Error.Code)
			assert.Equal(t, "An internal server error occurred", body.Error.Message)
			assert.Equal(t, "corr-panic", body.CorrelationID)

			logOutput := logBuffer.String()
			assert.Contains(t, logOutput, `"msg":"Panic recovered"`)
			assert.Contains(t, logOutput, tc.errorText)
			assert.Contains(t, logOutput, `"stack":`)
			assert.Contains(t, logOutput, `"path":"/api/v1/loans/3/payments"`)
			assert.Contains(t, logOutput, `"correlation_id":"corr-panic"`)
		})
	}

	t.Run("NoPanicNoEffect", func(t *testing.T) {
		var logBuffer bytes.Buffer
		router := gin.New()
		router.Use(Recovery(slog.New(slog.NewJSONHandler(&logBuffer, nil))))
		router.GET("/health", func(c *gin.Context) {
			c.String(http.StatusOK, "OK")
		})

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, logBuffer.String())
	})
}
