package handler

import (
	"net/http"

	"services/market-data-service/internal/service"
	"services/market-data-service/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ConfigHandler exposes the key/value configuration store to other services
type ConfigHandler struct {
	configService *service.ConfigService
	logger        *zap.Logger
}

// NewConfigHandler creates a new configuration handler
func NewConfigHandler(configService *service.ConfigService, logger *zap.Logger) *ConfigHandler {
	return &ConfigHandler{
		configService: configService,
		logger:        logger,
	}
}

// GetConfig handles reading one configuration value
// GET /api/v1/service/config/:key
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	key := c.Param("key")

	value, err := h.configService.Get(c.Request.Context(), key)
	if err != nil {
		h.logger.Error("Failed to read configuration", zap.Error(err), zap.String("key", key))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to read configuration")
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}

// SetConfig handles writing one configuration value
// PUT /api/v1/service/config/:key
func (h *ConfigHandler) SetConfig(c *gin.Context) {
	key := c.Param("key")

	var body struct {
		Value string `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Request body must contain a value")
		return
	}

	if err := h.configService.Set(c.Request.Context(), key, body.Value); err != nil {
		h.logger.Error("Failed to write configuration", zap.Error(err), zap.String("key", key))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to write configuration")
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": key, "value": body.Value})
}
