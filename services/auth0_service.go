package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/atelierworks/garment-orders-api/config"
)

// Auth0UserInfo is the subset of Auth0's /userinfo response the API needs
// to provision a local profile.
type Auth0UserInfo struct {
	Sub   string `json:"sub"` // Auth0 user ID
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Auth0Service calls the Auth0 Authentication API.
type Auth0Service struct {
	domain     string
	httpClient *http.Client
}

// NewAuth0Service creates a new Auth0 service instance
func NewAuth0Service(cfg *config.Config) *Auth0Service {
	return &Auth0Service{
		domain: cfg.Auth0Domain,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// userinfoURL builds the endpoint URL. A domain that already carries a
// scheme (the test servers do) is used as-is.
func (s *Auth0Service) userinfoURL() string {
	if strings.HasPrefix(s.domain, "http://") || strings.HasPrefix(s.domain, "https://") {
		return s.domain + "/userinfo"
	}
	return "https://" + s.domain + "/userinfo"
}

// GetUserInfo exchanges an access token for the user's profile via Auth0's
// /userinfo endpoint.
func (s *Auth0Service) GetUserInfo(ctx context.Context, accessToken string) (*Auth0UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userinfoURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call userinfo endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("userinfo endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var userInfo Auth0UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}

	return &userInfo, nil
}
