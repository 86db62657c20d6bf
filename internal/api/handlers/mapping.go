package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"catalogsync/internal/logger"
	"catalogsync/internal/recon"
)

type MappingHandler struct {
	engine *recon.Engine
	logger *logger.Logger
}

func NewMappingHandler(engine *recon.Engine, logger *logger.Logger) *MappingHandler {
	return &MappingHandler{
		engine: engine,
		logger: logger,
	}
}

// List returns all persisted mappings.
func (h *MappingHandler) List(c *gin.Context) {
	mappings, err := h.engine.ListMappings(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list mappings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch mappings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": mappings})
}

// Create registers one operator-confirmed supplier->master mapping.
func (h *MappingHandler) Create(c *gin.Context) {
	var request struct {
		SupplierSKU string `json:"supplier_sku" binding:"required"`
		MasterSKU   string `json:"master_sku" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mapping, err := h.engine.CreateManualMapping(c.Request.Context(), request.SupplierSKU, request.MasterSKU)
	if err != nil {
		h.logger.Error("failed to create mapping: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create mapping"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": mapping})
}

// Delete removes one mapping by supplier sku.
func (h *MappingHandler) Delete(c *gin.Context) {
	if err := h.engine.DeleteMapping(c.Request.Context(), c.Param("supplier_sku")); err != nil {
		h.logger.Error("failed to delete mapping: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete mapping"})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// Bulk imports a batch of manual mappings. Per-item failures are reported in
// the result, not as an HTTP error.
func (h *MappingHandler) Bulk(c *gin.Context) {
	var request struct {
		Mappings []recon.MappingInput `json:"mappings" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.engine.BulkCreateMappings(c.Request.Context(), request.Mappings)
	c.JSON(http.StatusOK, gin.H{"data": result})
}

// Report returns the reconciliation snapshot: persisted mappings, SKUs still
// pending review, and detected conflicts.
func (h *MappingHandler) Report(c *gin.Context) {
	report, err := h.engine.GetReconciliationReport(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to build reconciliation report: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}
