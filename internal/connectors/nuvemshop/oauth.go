package nuvemshop

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"catalogsync/internal/config"
	"catalogsync/internal/logger"
)

const (
	authorizeURLFormat = "https://www.nuvemshop.com.br/apps/%s/authorize"
	tokenURL           = "https://www.nuvemshop.com.br/apps/authorize/token"
)

type OAuthService struct {
	config *config.Config
	logger *logger.Logger
	client *http.Client
}

func NewOAuthService(cfg *config.Config, logger *logger.Logger) *OAuthService {
	return &OAuthService{
		config: cfg,
		logger: logger,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GenerateAuthURL builds the app authorization URL. Nuvemshop binds scopes to
// the app registration, so only the state travels on the URL.
func (s *OAuthService) GenerateAuthURL(state string) string {
	base := fmt.Sprintf(authorizeURLFormat, s.config.NuvemshopClientID)
	if state == "" {
		return base
	}
	return base + "?state=" + url.QueryEscape(state)
}

// ExchangeCodeForToken exchanges the authorization code for an access token
// plus the store id the API base URL needs.
func (s *OAuthService) ExchangeCodeForToken(code string) (*TokenResponse, error) {
	data := url.Values{}
	data.Set("client_id", s.config.NuvemshopClientID)
	data.Set("client_secret", s.config.NuvemshopClientSecret)
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)

	req, err := http.NewRequest(http.MethodPost, tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token exchange failed with status: %d", resp.StatusCode)
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("token exchange returned no access token")
	}

	return &tokenResp, nil
}
