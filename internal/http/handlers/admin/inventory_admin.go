package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/leafcart/internal/http/handlers/shared"
	"github.com/leafcart/internal/http/response"
	"github.com/leafcart/internal/repository"
	"github.com/leafcart/internal/service"

	"github.com/gin-gonic/gin"
)

// AdjustStockRequest 库存调整请求
type AdjustStockRequest struct {
	Delta      int    `json:"delta" binding:"required"`
	ChangeType string `json:"change_type"`
	Notes      string `json:"notes"`
}

// UpdateThresholdRequest 低库存阈值请求
type UpdateThresholdRequest struct {
	LowStockThreshold *int `json:"low_stock_threshold" binding:"required"`
}

// AdminListInventory 库存列表
func (h *Handler) AdminListInventory(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)

	var productIDs []uint
	if raw := strings.TrimSpace(c.Query("product_ids")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if parsed, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64); err == nil && parsed > 0 {
				productIDs = append(productIDs, uint(parsed))
			}
		}
	}

	items, total, err := h.InventoryService.List(repository.InventoryListFilter{
		Page:         page,
		PageSize:     pageSize,
		ProductIDs:   productIDs,
		OnlyLowStock: c.Query("low_stock") == "true",
	})
	if err != nil {
		respondMappedError(c, err)
		return
	}

	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// AdminListLowStock 可用量低于阈值的商品
func (h *Handler) AdminListLowStock(c *gin.Context) {
	items, err := h.InventoryService.ListLowStock()
	if err != nil {
		respondMappedError(c, err)
		return
	}
	response.Success(c, items)
}

// AdminListInventoryLogs 库存变动日志
func (h *Handler) AdminListInventoryLogs(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)

	createdFrom, err := handlershared.ParseTimeNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid created_from", nil)
		return
	}
	createdTo, err := handlershared.ParseTimeNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid created_to", nil)
		return
	}
	var productID uint
	if raw := strings.TrimSpace(c.Query("product_id")); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			productID = uint(parsed)
		}
	}

	logs, total, err := h.InventoryService.ListLogs(repository.InventoryLogListFilter{
		Page:        page,
		PageSize:    pageSize,
		ProductID:   productID,
		ChangeType:  strings.TrimSpace(c.Query("change_type")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondMappedError(c, err)
		return
	}

	response.SuccessWithPage(c, logs, response.BuildPagination(page, pageSize, total))
}

// AdminGetInventory 商品库存详情
func (h *Handler) AdminGetInventory(c *gin.Context) {
	productID, ok := handlershared.ParseUintParam(c, "product_id")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}

	inv, err := h.InventoryService.GetByProduct(productID)
	if err != nil {
		respondMappedError(c, err)
		return
	}

	response.Success(c, inv)
}

// AdminAdjustInventory 手工调整库存（增减在库数量）
func (h *Handler) AdminAdjustInventory(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	productID, ok := handlershared.ParseUintParam(c, "product_id")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}

	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	inv, err := h.InventoryService.AdjustStock(service.AdjustStockInput{
		ProductID:  productID,
		Delta:      req.Delta,
		ChangeType: req.ChangeType,
		ActorID:    adminID,
		Notes:      req.Notes,
	})
	if err != nil {
		respondMappedError(c, err)
		return
	}

	response.Success(c, inv)
}

// AdminUpdateThreshold 设置低库存阈值
func (h *Handler) AdminUpdateThreshold(c *gin.Context) {
	productID, ok := handlershared.ParseUintParam(c, "product_id")
	if !ok {
		respondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}

	var req UpdateThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	inv, err := h.InventoryService.SetLowStockThreshold(productID, *req.LowStockThreshold)
	if err != nil {
		respondMappedError(c, err)
		return
	}

	response.Success(c, inv)
}
