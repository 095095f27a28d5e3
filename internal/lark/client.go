// Package lark is a thin typed client for the Lark open platform APIs the
// bot depends on: bitable records, the contact directory and IM messaging.
package lark

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/balfaz610/report-week/internal/clock"
	"github.com/balfaz610/report-week/internal/config"
	"go.uber.org/zap"
)

// tokenExpiryMargin is subtracted from the advertised token lifetime so a
// token is refreshed before the platform rejects it mid-request.
const tokenExpiryMargin = 5 * time.Minute

type Config struct {
	BaseURL   string
	AppID     string
	AppSecret string
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *zap.Logger
	clock      clock.Clock

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClient(cfg Config, log *zap.Logger, clk clock.Clock) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 12 * time.Second},
		log:        log.Named("lark"),
		clock:      clk,
	}
}

func NewFromConfig(cfg config.Config, log *zap.Logger, clk clock.Clock) *Client {
	return NewClient(Config{
		BaseURL:   cfg.BaseURL,
		AppID:     cfg.AppID,
		AppSecret: cfg.AppSecret,
	}, log, clk)
}

// APIError is a non-zero platform response code.
type APIError struct {
	Code int
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("lark api error %d: %s", e.Code, e.Msg)
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type tokenResponse struct {
	Code              int    `json:"code"`
	Msg               string `json:"msg"`
	TenantAccessToken string `json:"tenant_access_token"`
	Expire            int64  `json:"expire"`
}

func (c *Client) tenantAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if c.token != "" && now.Before(c.tokenExpiry) {
		return c.token, nil
	}

	payload, err := json.Marshal(map[string]string{
		"app_id":     c.cfg.AppID,
		"app_secret": c.cfg.AppSecret,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/open-apis/auth/v3/tenant_access_token/internal", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request tenant access token: %w", err)
	}
	defer resp.Body.Close()

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode tenant access token: %w", err)
	}
	if tr.Code != 0 {
		return "", &APIError{Code: tr.Code, Msg: tr.Msg}
	}

	c.token = tr.TenantAccessToken
	c.tokenExpiry = now.Add(time.Duration(tr.Expire)*time.Second - tokenExpiryMargin)
	return c.token, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	token, err := c.tenantAccessToken(ctx)
	if err != nil {
		return err
	}

	var bodyReader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(raw)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	endpoint := c.cfg.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	if env.Code != 0 {
		return &APIError{Code: env.Code, Msg: env.Msg}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode %s %s data: %w", method, path, err)
		}
	}
	return nil
}
