package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"catalogsync/internal/database"
	"catalogsync/internal/logger"
)

type ProductHandler struct {
	store  *database.Store
	logger *logger.Logger
}

func NewProductHandler(store *database.Store, logger *logger.Logger) *ProductHandler {
	return &ProductHandler{
		store:  store,
		logger: logger,
	}
}

// List returns the canonical catalog, optionally filtered by connector.
func (h *ProductHandler) List(c *gin.Context) {
	spus, err := h.store.ListProducts(c.Request.Context(), c.Query("connector_id"))
	if err != nil {
		h.logger.Error("failed to list products: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": spus, "count": len(spus)})
}

func (h *ProductHandler) Get(c *gin.Context) {
	spu, err := h.store.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("failed to fetch product: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}
	if spu == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": spu})
}
