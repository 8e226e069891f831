package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// tokenRefreshMargin renews tokens this long before their reported expiry.
const tokenRefreshMargin = 5 * time.Minute

type cachedToken struct {
	value     string
	expiresAt time.Time
}

// tokenCache holds tenant access tokens per app ID. Tokens are valid for
// roughly two hours; the cache renews early to avoid mid-run expiry.
type tokenCache struct {
	mu     sync.Mutex
	tokens map[string]cachedToken
}

func newTokenCache() *tokenCache {
	return &tokenCache{tokens: make(map[string]cachedToken)}
}

// get returns a valid tenant access token for the credentials, fetching a
// fresh one when the cached token is absent or near expiry.
func (tc *tokenCache) get(ctx context.Context, c *httpClient, creds Credentials) (string, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if tok, ok := tc.tokens[creds.AppID]; ok && time.Now().Before(tok.expiresAt) {
		return tok.value, nil
	}

	token, expire, err := fetchTenantToken(ctx, c, creds)
	if err != nil {
		return "", err
	}

	tc.tokens[creds.AppID] = cachedToken{
		value:     token,
		expiresAt: time.Now().Add(time.Duration(expire)*time.Second - tokenRefreshMargin),
	}
	return token, nil
}

// fetchTenantToken calls the internal tenant_access_token endpoint.
// The endpoint uses a flat response body instead of the standard envelope.
func fetchTenantToken(ctx context.Context, c *httpClient, creds Credentials) (string, int, error) {
	payload, err := json.Marshal(map[string]string{
		"app_id":     creds.AppID,
		"app_secret": creds.AppSecret,
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to encode token request: %w", err)
	}

	url := c.baseURL + "/auth/v3/tenant_access_token/internal"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", 0, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", 0, fmt.Errorf("failed to read token response: %w", err)
	}

	var body struct {
		Code              int    `json:"code"`
		Msg               string `json:"msg"`
		TenantAccessToken string `json:"tenant_access_token"`
		Expire            int    `json:"expire"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", 0, &APIError{HTTPStatus: resp.StatusCode, Msg: "unparseable token response", Endpoint: "tenant_access_token"}
	}

	if resp.StatusCode != http.StatusOK || body.Code != 0 {
		return "", 0, &APIError{HTTPStatus: resp.StatusCode, Code: body.Code, Msg: body.Msg, Endpoint: "tenant_access_token"}
	}

	return body.TenantAccessToken, body.Expire, nil
}
