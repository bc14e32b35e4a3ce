package utils

import (
	"time"

	"github.com/gin-gonic/gin"
)

// SendErrorResponse sends a JSON error response with the given status code
func SendErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// ParseDateParam parses a date query parameter, accepting YYYY-MM-DD or RFC3339
func ParseDateParam(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
