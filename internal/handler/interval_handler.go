package handler

import (
	"net/http"

	"services/market-data-service/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IntervalHandler handles sampling-interval HTTP requests
type IntervalHandler struct {
	logger *zap.Logger
}

// NewIntervalHandler creates a new interval handler
func NewIntervalHandler(logger *zap.Logger) *IntervalHandler {
	return &IntervalHandler{logger: logger}
}

// GetIntervals lists all supported sampling intervals
// GET /api/v1/intervals
func (h *IntervalHandler) GetIntervals(c *gin.Context) {
	intervals := model.Intervals()

	out := make([]gin.H, 0, len(intervals))
	for _, interval := range intervals {
		out = append(out, gin.H{
			"name":    interval.String(),
			"minutes": int(interval.Duration().Minutes()),
		})
	}

	c.JSON(http.StatusOK, gin.H{"intervals": out})
}

// ValidateInterval checks whether an interval string is supported
// GET /api/v1/intervals/validate/:interval
func (h *IntervalHandler) ValidateInterval(c *gin.Context) {
	raw := c.Param("interval")

	interval, err := model.ParseInterval(raw)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"interval": raw, "valid": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"interval": interval.String(),
		"valid":    true,
		"minutes":  int(interval.Duration().Minutes()),
	})
}
