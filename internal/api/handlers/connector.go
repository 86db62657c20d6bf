package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"catalogsync/internal/logger"
	"catalogsync/internal/models"
	"catalogsync/internal/syncer"
)

type ConnectorHandler struct {
	db     *gorm.DB
	logger *logger.Logger
	syncer *syncer.Syncer
}

func NewConnectorHandler(db *gorm.DB, logger *logger.Logger, syncer *syncer.Syncer) *ConnectorHandler {
	return &ConnectorHandler{
		db:     db,
		logger: logger,
		syncer: syncer,
	}
}

func (h *ConnectorHandler) List(c *gin.Context) {
	var connectors []models.Connector

	if err := h.db.Find(&connectors).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch connectors"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": connectors})
}

func (h *ConnectorHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var connector models.Connector
	if err := h.db.First(&connector, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Connector not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch connector"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": connector})
}

func (h *ConnectorHandler) Create(c *gin.Context) {
	var connector models.Connector
	if err := c.ShouldBindJSON(&connector); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Reject unknown source types and missing credentials before the row
	// exists, not on the first sync.
	if _, err := h.syncer.Build(&connector); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.db.Create(&connector).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create connector"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": connector})
}

func (h *ConnectorHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var connector models.Connector
	if err := h.db.First(&connector, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Connector not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch connector"})
		return
	}

	if err := c.ShouldBindJSON(&connector); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.db.Save(&connector).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update connector"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": connector})
}

func (h *ConnectorHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.db.Delete(&models.Connector{}, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete connector"})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// Sync runs a full import for the connector and returns the run result. A
// partially failed run is still a 200; the result carries the counts.
func (h *ConnectorHandler) Sync(c *gin.Context) {
	id := c.Param("id")

	connector, err := h.syncer.Connector(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch connector"})
		return
	}
	if connector == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Connector not found"})
		return
	}

	result, err := h.syncer.SyncConnector(c.Request.Context(), connector)
	if err != nil {
		h.logger.Error("sync failed for connector %s: %v", id, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// Test runs the adapter's connectivity probe.
func (h *ConnectorHandler) Test(c *gin.Context) {
	id := c.Param("id")

	connector, err := h.syncer.Connector(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch connector"})
		return
	}
	if connector == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Connector not found"})
		return
	}

	adapter, err := h.syncer.Build(connector)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"connector_id": connector.ID,
		"healthy":      adapter.TestConnection(c.Request.Context()),
	}})
}
