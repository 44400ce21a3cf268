package zoho

import (
	"context"
	"encoding/json"
	"fairwaydesk/app/config"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/samber/do"
)

const tokenExpiryMargin = time.Minute

// Client talks to the Zoho CRM REST API. Access tokens are minted from the
// configured refresh token and cached until shortly before expiry.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// SearchSalesOrders looks up CRM sales orders by customer email. A search
// with no matches returns an empty slice, not an error.
func (c *Client) SearchSalesOrders(ctx context.Context, email string) ([]map[string]any, error) {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	criteria := fmt.Sprintf("(Email_1:equals:%s)", email)
	reqURL := fmt.Sprintf("%s/crm/v2/Sales_Orders/search?criteria=%s",
		c.cfg.Zoho.APIBaseURL, url.QueryEscape(criteria))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Zoho-oauthtoken "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search sales orders: %w", err)
	}
	defer resp.Body.Close()

	// CRM returns 204 when the criteria matches nothing
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from crm search", resp.StatusCode)
	}

	var body struct {
		Data []map[string]any `json:"data"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode crm response: %w", err)
	}

	return body.Data, nil
}

func (c *Client) getAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.expiresAt) {
		return c.accessToken, nil
	}

	form := url.Values{
		"client_id":     {c.cfg.Zoho.ClientID},
		"client_secret": {c.cfg.Zoho.ClientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {c.cfg.Zoho.RefreshToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.Zoho.AccountsURL+"/oauth/v2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to request token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d from token endpoint", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	if body.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned empty access token")
	}

	expiresIn := body.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 3600
	}

	c.accessToken = body.AccessToken
	c.expiresAt = time.Now().Add(time.Duration(expiresIn)*time.Second - tokenExpiryMargin)

	return c.accessToken, nil
}
