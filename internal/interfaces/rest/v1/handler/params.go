package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"go-catalog-live/internal/application/service"
	"go-catalog-live/internal/domain/catalog"
)

// pageFromQuery reads page and limit, falling back to the defaults for
// missing or malformed values.
func pageFromQuery(c *gin.Context) catalog.Page {
	return catalog.Page{
		Number: intQuery(c, "page", service.DefaultPage),
		Limit:  intQuery(c, "limit", service.DefaultLimit),
	}
}

func intQuery(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
