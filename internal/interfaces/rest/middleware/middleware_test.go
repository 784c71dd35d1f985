package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"go-catalog-live/internal/domain/catalog"
	"go-catalog-live/internal/infrastructure/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serveWithError(err error) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(Errors(logger.NewNop()))
	router.GET("/", func(c *gin.Context) { _ = c.Error(err) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec
}

func TestErrors_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"not found", fmt.Errorf("movie: %w", catalog.ErrNotFound), http.StatusNotFound, "Resource not found"},
		{"invalid id", catalog.ErrInvalidID, http.StatusBadRequest, "Invalid id"},
		{"bad body", BadRequest{Err: errors.New("unexpected EOF")}, http.StatusBadRequest, "Invalid request body"},
		{"internal", errors.New("socket closed"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serveWithError(tc.err)
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"message":"`+tc.msg+`"`)
		})
	}
}

func TestErrors_InternalDetailsHidden(t *testing.T) {
	rec := serveWithError(errors.New("password=hunter2"))
	assert.NotContains(t, rec.Body.String(), "hunter2")
}

func TestErrors_ValidationDetails(t *testing.T) {
	type body struct {
		Name string `json:"name" binding:"required"`
	}

	router := gin.New()
	router.Use(Errors(logger.NewNop()))
	router.POST("/", func(c *gin.Context) {
		var b body
		if err := c.ShouldBindJSON(&b); err != nil {
			_ = c.Error(BadRequest{Err: err})
		}
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", stringsReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":{"message":"Validation error","details":["Name failed on required"]}}`, rec.Body.String())
}

func TestCORS_Preflight(t *testing.T) {
	router := gin.New()
	router.Use(CORS())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
