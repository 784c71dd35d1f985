package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"go-catalog-live/internal/domain/catalog"
	"go-catalog-live/internal/infrastructure/logger"
)

// ErrorBody is the JSON envelope for failed requests.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Message string `json:"message"`
	Details any    `json:"details"`
}

// Errors renders the last error attached with c.Error, unless the handler
// already wrote a response.
func Errors(log logger.Logger) gin.HandlerFunc {
	log = log.WithField("middleware", "errors")

	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, body := render(err)
		if status >= http.StatusInternalServerError {
			log.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		}
		c.AbortWithStatusJSON(status, body)
	}
}

func render(err error) (int, ErrorBody) {
	var (
		verrs validator.ValidationErrors
		bad   BadRequest
	)
	switch {
	case errors.As(err, &verrs):
		details := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, fe.Field()+" failed on "+fe.Tag())
		}
		return http.StatusBadRequest, ErrorBody{Error: ErrorDetail{Message: "Validation error", Details: details}}
	case errors.As(err, &bad):
		return http.StatusBadRequest, ErrorBody{Error: ErrorDetail{Message: "Invalid request body", Details: bad.Err.Error()}}
	case errors.Is(err, catalog.ErrInvalidID):
		return http.StatusBadRequest, ErrorBody{Error: ErrorDetail{Message: "Invalid id", Details: err.Error()}}
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound, ErrorBody{Error: ErrorDetail{Message: "Resource not found", Details: err.Error()}}
	default:
		return http.StatusInternalServerError, ErrorBody{Error: ErrorDetail{Message: "Internal Server Error"}}
	}
}

// BadRequest marks a binding or decoding failure.
type BadRequest struct {
	Err error
}

func (e BadRequest) Error() string { return e.Err.Error() }
func (e BadRequest) Unwrap() error { return e.Err }
