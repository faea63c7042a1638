package util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// ParseInt parses a string to an integer, returning defaultValue if parsing fails
func ParseInt(s string, defaultValue int) int {
	if val, err := strconv.Atoi(s); err == nil {
		return val
	}
	return defaultValue
}

// PageSizeFromQuery reads the pageSize query parameter, clamped to [1, 50]
func PageSizeFromQuery(c *gin.Context) int {
	size := ParseInt(c.Query("pageSize"), defaultPageSize)
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return size
}

// CursorFromQuery reads the raw cursor query parameter, empty for first page
func CursorFromQuery(c *gin.Context) string {
	return c.Query("cursor")
}
