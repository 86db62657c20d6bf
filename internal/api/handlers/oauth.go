package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"catalogsync/internal/config"
	"catalogsync/internal/connectors"
	"catalogsync/internal/connectors/nuvemshop"
	"catalogsync/internal/connectors/shopify"
	"catalogsync/internal/logger"
	"catalogsync/internal/models"
)

// OAuthHandler runs the install/callback flows that turn an app authorization
// into a stored connector row.
type OAuthHandler struct {
	db        *gorm.DB
	logger    *logger.Logger
	config    *config.Config
	shopify   *shopify.OAuthService
	nuvemshop *nuvemshop.OAuthService
}

func NewOAuthHandler(db *gorm.DB, logger *logger.Logger, cfg *config.Config) *OAuthHandler {
	return &OAuthHandler{
		db:        db,
		logger:    logger,
		config:    cfg,
		shopify:   shopify.NewOAuthService(cfg, logger),
		nuvemshop: nuvemshop.NewOAuthService(cfg, logger),
	}
}

// ShopifyInstall initiates the Shopify OAuth flow.
func (h *OAuthHandler) ShopifyInstall(c *gin.Context) {
	var request struct {
		ShopDomain  string `json:"shop_domain" binding:"required"`
		RedirectURI string `json:"redirect_uri" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	authURL, state, err := h.shopify.GenerateAuthURL(request.ShopDomain, request.RedirectURI)
	if err != nil {
		h.logger.Error("failed to generate auth URL: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authorization URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"auth_url": authURL,
		"state":    state,
		"message":  "Redirect user to the auth_url to complete OAuth flow",
	})
}

// ShopifyCallback handles the OAuth callback and stores the connector.
func (h *OAuthHandler) ShopifyCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	shop := c.Query("shop")

	if code == "" || state == "" || shop == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required parameters"})
		return
	}

	tokenResp, err := h.shopify.ExchangeCodeForToken(shop, code)
	if err != nil {
		h.logger.Error("failed to exchange code for token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to exchange authorization code"})
		return
	}

	transport := connectors.NewHTTPTransport(shopify.BaseURL(shop), shopify.AuthHeaders(tokenResp.AccessToken))
	client := shopify.NewClient(transport, h.logger)
	shopInfo, err := client.GetShopInfo(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to get shop info: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get shop information"})
		return
	}

	connector := &models.Connector{
		Name:   shopInfo.Name,
		Type:   models.SourceTypeShopify,
		Status: models.ConnectorStatusActive,
		Config: map[string]interface{}{
			"shop_id":  shopInfo.ID,
			"email":    shopInfo.Email,
			"currency": shopInfo.Currency,
			"timezone": shopInfo.Timezone,
		},
		Credentials: map[string]interface{}{
			"shop_domain":  shop,
			"access_token": tokenResp.AccessToken,
			"scope":        tokenResp.Scope,
		},
	}

	if err := h.db.Create(connector).Error; err != nil {
		h.logger.Error("failed to save connector: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save connector"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Shopify store connected successfully",
		"connector_id": connector.ID,
		"shop_name":    shopInfo.Name,
	})
}

// NuvemshopInstall returns the app authorization URL.
func (h *OAuthHandler) NuvemshopInstall(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"auth_url": h.nuvemshop.GenerateAuthURL(c.Query("state")),
		"message":  "Redirect user to the auth_url to complete OAuth flow",
	})
}

// NuvemshopCallback exchanges the authorization code and stores the connector.
// The store id comes back with the token, so no extra lookup is needed.
func (h *OAuthHandler) NuvemshopCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required parameters"})
		return
	}

	tokenResp, err := h.nuvemshop.ExchangeCodeForToken(code)
	if err != nil {
		h.logger.Error("failed to exchange code for token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to exchange authorization code"})
		return
	}

	storeID := strconv.FormatInt(tokenResp.UserID, 10)
	connector := &models.Connector{
		Name:   "Nuvemshop store " + storeID,
		Type:   models.SourceTypeNuvemshop,
		Status: models.ConnectorStatusActive,
		Credentials: map[string]interface{}{
			"store_id":     storeID,
			"access_token": tokenResp.AccessToken,
			"scope":        tokenResp.Scope,
		},
	}

	if err := h.db.Create(connector).Error; err != nil {
		h.logger.Error("failed to save connector: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save connector"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Nuvemshop store connected successfully",
		"connector_id": connector.ID,
		"store_id":     storeID,
	})
}
