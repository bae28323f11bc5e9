package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/brainrot-market/market-service/internal/config"
	"github.com/brainrot-market/market-service/pkg/retry"
)

// ErrPayPalNotConfigured is returned when client credentials are absent.
var ErrPayPalNotConfigured = errors.New("paypal_not_configured: missing client credentials")

// IssuePayeeAccountRestricted is the provider issue code for a merchant
// account that cannot receive payments.
const IssuePayeeAccountRestricted = "PAYEE_ACCOUNT_RESTRICTED"

// PayPalOrderInput describes a v2 order: total amount, optional redirect
// targets and an opaque buyer correlation id.
type PayPalOrderInput struct {
	Amount    float64
	Currency  string
	ReturnURL string
	CancelURL string
	CustomID  string
}

// PayPalLink is a HATEOAS link from the orders API.
type PayPalLink struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method,omitempty"`
}

// PayPalOrder is the created/fetched order.
type PayPalOrder struct {
	ID     string       `json:"id"`
	Status string       `json:"status"`
	Links  []PayPalLink `json:"links"`
}

// ApproveURL returns the buyer approval link, or empty when absent.
func (o *PayPalOrder) ApproveURL() string {
	for _, link := range o.Links {
		if link.Rel == "approve" {
			return link.Href
		}
	}
	return ""
}

// PayPalAPIError is a structured provider error, including the debug id
// surfaced to clients for support escalation.
type PayPalAPIError struct {
	StatusCode int                 `json:"-"`
	Name       string              `json:"name"`
	Message    string              `json:"message"`
	DebugID    string              `json:"debug_id"`
	Details    []PayPalErrorDetail `json:"details"`
}

// PayPalErrorDetail is one issue in a provider error.
type PayPalErrorDetail struct {
	Issue       string `json:"issue"`
	Description string `json:"description"`
}

func (e *PayPalAPIError) Error() string {
	return fmt.Sprintf("paypal: %s (%s) debug_id=%s status=%d", e.Name, e.Message, e.DebugID, e.StatusCode)
}

// HasIssue reports whether any detail carries the given issue code.
func (e *PayPalAPIError) HasIssue(issue string) bool {
	for _, d := range e.Details {
		if d.Issue == issue {
			return true
		}
	}
	return false
}

// PayPalGateway abstracts the PayPal API for the checkout service.
type PayPalGateway interface {
	CreateOrder(ctx context.Context, in PayPalOrderInput) (*PayPalOrder, error)
	GetOrder(ctx context.Context, id string) (*PayPalOrder, error)
}

type paypalTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// PayPalClient talks to the PayPal REST API directly. Authentication is
// client-credentials OAuth against the live endpoint, falling back to
// sandbox when the live credentials are refused; the token is cached in
// memory and, when a TokenCache is supplied, shared across instances.
type PayPalClient struct {
	cfg    config.PayPalConfig
	http   *http.Client
	cache  TokenCache
	logger *zap.Logger
	policy retry.Policy

	mu       sync.Mutex
	apiBase  string
	token    string
	tokenExp time.Time
}

// NewPayPalClient constructs the client.
func NewPayPalClient(cfg config.PayPalConfig, cache TokenCache, logger *zap.Logger, policy retry.Policy) *PayPalClient {
	if policy.MaxRetries == 0 && policy.Delay == 0 && policy.Timeout == 0 {
		policy = retry.DefaultPolicy
	}
	return &PayPalClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: 30 * time.Second},
		cache:  cache,
		logger: logger,
		policy: policy,
	}
}

const tokenCacheKey = "paypal:access_token"

// AccessToken returns a valid bearer token, fetching and caching one
// when needed. Tokens are renewed a minute before their actual expiry.
func (c *PayPalClient) AccessToken(ctx context.Context) (string, error) {
	if !c.cfg.Configured() {
		return "", ErrPayPalNotConfigured
	}

	c.mu.Lock()
	if c.token != "" && time.Now().Before(c.tokenExp) {
		token := c.token
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()

	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, tokenCacheKey); err == nil && cached != "" {
			if base, token, ok := strings.Cut(cached, "|"); ok {
				c.mu.Lock()
				c.apiBase = base
				c.token = token
				// the cache TTL governs real expiry; keep a short local window
				c.tokenExp = time.Now().Add(time.Minute)
				c.mu.Unlock()
				return token, nil
			}
		}
	}

	var token string
	var expiresIn int
	var base string
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		var fetchErr error
		token, expiresIn, base, fetchErr = c.fetchToken(ctx)
		return fetchErr
	})
	if err != nil {
		return "", err
	}

	ttl := time.Duration(expiresIn-60) * time.Second
	if ttl <= 0 {
		ttl = time.Minute
	}

	c.mu.Lock()
	c.apiBase = base
	c.token = token
	c.tokenExp = time.Now().Add(ttl)
	c.mu.Unlock()

	if c.cache != nil {
		if err := c.cache.Set(ctx, tokenCacheKey, base+"|"+token, ttl); err != nil && c.logger != nil {
			c.logger.Warn("paypal token cache write failed", zap.Error(err))
		}
	}
	return token, nil
}

// fetchToken tries the live endpoint first and falls back to sandbox on
// an auth refusal. Transport errors bubble up so the retry policy can
// have another go.
func (c *PayPalClient) fetchToken(ctx context.Context) (string, int, string, error) {
	bases := []string{c.cfg.LiveBase, c.cfg.SandboxBase}
	var lastErr error
	for i, base := range bases {
		token, expiresIn, err := c.requestToken(ctx, base)
		if err == nil {
			if i > 0 && c.logger != nil {
				c.logger.Info("paypal live auth refused, using sandbox", zap.String("base", base))
			}
			return token, expiresIn, base, nil
		}
		lastErr = err
		var apiErr *PayPalAPIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
			continue
		}
		return "", 0, "", err
	}
	return "", 0, "", lastErr
}

func (c *PayPalClient) requestToken(ctx context.Context, base string) (string, int, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		base+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("build paypal auth request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.Secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("paypal auth request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("read paypal auth response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, parseAPIError(resp.StatusCode, body)
	}

	var parsed paypalTokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", 0, fmt.Errorf("parse paypal auth response: %w", err)
	}
	if parsed.AccessToken == "" {
		return "", 0, errors.New("access token missing in paypal response")
	}
	return parsed.AccessToken, parsed.ExpiresIn, nil
}

// CreateOrder creates a CAPTURE-intent order and returns it with its
// approval link resolvable via ApproveURL.
func (c *PayPalClient) CreateOrder(ctx context.Context, in PayPalOrderInput) (*PayPalOrder, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	unit := map[string]any{
		"amount": map[string]any{
			"currency_code": in.Currency,
			"value":         fmt.Sprintf("%.2f", in.Amount),
		},
	}
	if in.CustomID != "" {
		unit["custom_id"] = in.CustomID
	}
	orderBody := map[string]any{
		"intent":         "CAPTURE",
		"purchase_units": []any{unit},
	}
	appCtx := map[string]any{}
	if c.cfg.BrandName != "" {
		appCtx["brand_name"] = c.cfg.BrandName
	}
	if in.ReturnURL != "" {
		appCtx["return_url"] = in.ReturnURL
	}
	if in.CancelURL != "" {
		appCtx["cancel_url"] = in.CancelURL
	}
	if len(appCtx) > 0 {
		orderBody["application_context"] = appCtx
	}

	var order PayPalOrder
	if err := c.doJSON(ctx, http.MethodPost, "/v2/checkout/orders", token, orderBody, http.StatusCreated, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrder fetches order state for reconciliation.
func (c *PayPalClient) GetOrder(ctx context.Context, id string) (*PayPalOrder, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	var order PayPalOrder
	if err := c.doJSON(ctx, http.MethodGet, "/v2/checkout/orders/"+id, token, nil, http.StatusOK, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *PayPalClient) doJSON(ctx context.Context, method, path, token string, payload any, wantStatus int, out any) error {
	c.mu.Lock()
	base := c.apiBase
	c.mu.Unlock()
	if base == "" {
		base = c.cfg.LiveBase
	}

	var bodyReader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal paypal payload: %w", err)
		}
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, bodyReader)
	if err != nil {
		return fmt.Errorf("build paypal request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("paypal request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read paypal response: %w", err)
	}
	if resp.StatusCode != wantStatus {
		return parseAPIError(resp.StatusCode, body)
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("parse paypal response: %w", err)
		}
	}
	return nil
}

func parseAPIError(status int, body []byte) error {
	apiErr := &PayPalAPIError{StatusCode: status}
	if err := json.Unmarshal(body, apiErr); err != nil || (apiErr.Name == "" && apiErr.Message == "") {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}
