// internal/api/handlers/inventory_handler.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/andresuchdata/inventory-abc/internal/domain"
	"github.com/andresuchdata/inventory-abc/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type InventoryHandler struct {
	inventoryService *service.InventoryService
	alertService     *service.AlertService
}

func NewInventoryHandler(inventoryService *service.InventoryService, alertService *service.AlertService) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		alertService:     alertService,
	}
}

type analyzeResponse struct {
	Success bool `json:"success"`
	*domain.AnalysisReport
}

type alertsRequest struct {
	CriticalItems []domain.CriticalItem `json:"critical_items"`
}

type alertsResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	*domain.AlertReport
}

// AnalyzeInventory runs the ABC / EOQ analysis over the posted item list
func (h *InventoryHandler) AnalyzeInventory(c *gin.Context) {
	var inputs []domain.ItemInput
	if err := c.ShouldBindJSON(&inputs); err != nil {
		failure(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	items := make([]domain.InventoryItem, 0, len(inputs))
	for i, in := range inputs {
		item, err := in.ToItem(i)
		if err != nil {
			failure(c, http.StatusBadRequest, err)
			return
		}
		items = append(items, item)
	}

	rep, err := h.inventoryService.Analyze(c.Request.Context(), items)
	if err != nil {
		failure(c, statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, analyzeResponse{Success: true, AnalysisReport: rep})
}

// SendStockAlerts mails one low stock alert per posted critical item
func (h *InventoryHandler) SendStockAlerts(c *gin.Context) {
	var req alertsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failure(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	rep, err := h.alertService.SendAlerts(c.Request.Context(), req.CriticalItems)
	if err != nil {
		failure(c, statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, alertsResponse{
		Success:     true,
		Message:     fmt.Sprintf("%d alerts sent", rep.Sent),
		AlertReport: rep,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidItem), errors.Is(err, domain.ErrUndefinedEOQ):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func failure(c *gin.Context, status int, err error) {
	log.Error().Err(err).Int("status", status).Str("path", c.Request.URL.Path).Msg("request failed")
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}
