package handler

import (
	"errors"
	"net/http"

	"services/market-data-service/internal/service"
	"services/market-data-service/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MarketDataHandler handles market data HTTP requests
type MarketDataHandler struct {
	marketDataService *service.MarketDataService
	logger            *zap.Logger
}

// NewMarketDataHandler creates a new market data handler
func NewMarketDataHandler(marketDataService *service.MarketDataService, logger *zap.Logger) *MarketDataHandler {
	return &MarketDataHandler{
		marketDataService: marketDataService,
		logger:            logger,
	}
}

// GetTimeSeries handles retrieving a symbol's time series for a date range
// GET /api/v1/market-data/time-series
func (h *MarketDataHandler) GetTimeSeries(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Symbol is required")
		return
	}

	startStr := c.Query("start_date")
	if startStr == "" {
		utils.SendErrorResponse(c, http.StatusBadRequest, "start_date is required")
		return
	}
	start, err := utils.ParseDateParam(startStr)
	if err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid start_date format. Use YYYY-MM-DD or RFC3339")
		return
	}

	endStr := c.Query("end_date")
	if endStr == "" {
		utils.SendErrorResponse(c, http.StatusBadRequest, "end_date is required")
		return
	}
	end, err := utils.ParseDateParam(endStr)
	if err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid end_date format. Use YYYY-MM-DD or RFC3339")
		return
	}

	result, err := h.marketDataService.GetTimeSeries(c.Request.Context(), symbol, start, end)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetEarliestDate handles retrieving the first date the provider can serve
// GET /api/v1/market-data/earliest-date/:symbol
func (h *MarketDataHandler) GetEarliestDate(c *gin.Context) {
	symbol := c.Param("symbol")

	date, err := h.marketDataService.GetEarliestDate(c.Request.Context(), symbol)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":   symbol,
		"earliest": date.Format("2006-01-02"),
	})
}

// GetAvailableSymbols handles listing the plan-filtered symbol universe
// GET /api/v1/symbols/available
func (h *MarketDataHandler) GetAvailableSymbols(c *gin.Context) {
	symbols, err := h.marketDataService.GetAvailableSymbols(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbols": symbols,
		"count":   len(symbols),
	})
}

// GetQuota reports the provider's remaining request budget
// GET /api/v1/quota
func (h *MarketDataHandler) GetQuota(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"provider":            h.marketDataService.Name(),
		"daily_remaining":     h.marketDataService.RequestLimit(),
		"minute_remaining":    h.marketDataService.RequestsRemaining(),
		"seconds_until_reset": int(h.marketDataService.TimeUntilReset().Seconds()),
	})
}

// respondServiceError maps service errors to HTTP status codes
func (h *MarketDataHandler) respondServiceError(c *gin.Context, err error) {
	var rangeErr *service.DateRangeError
	switch {
	case errors.As(err, &rangeErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  rangeErr.Error(),
			"reason": string(rangeErr.Reason),
		})
	case errors.Is(err, service.ErrSymbolNotFound):
		utils.SendErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUpstreamRequestFailed):
		utils.SendErrorResponse(c, http.StatusBadGateway, err.Error())
	default:
		h.logger.Error("Unhandled service error", zap.Error(err))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}
