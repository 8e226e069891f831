package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxResponseSize bounds response bodies read from the API (10MB).
const maxResponseSize = 10 * 1024 * 1024

// Client defines the interface for Bitable operations used by the sync engine.
type Client interface {
	// ListFields returns every column of the table, following pagination.
	ListFields(ctx context.Context, creds Credentials, appToken, tableID string) ([]Field, error)
	// CreateField creates one column and returns it with its assigned ID.
	CreateField(ctx context.Context, creds Credentials, appToken, tableID string, spec FieldSpec) (*Field, error)
	// ListAllRecords returns every row of the table, following the
	// cursor-paginated search endpoint with the given page size.
	ListAllRecords(ctx context.Context, creds Credentials, appToken, tableID string, pageSize int) ([]Record, error)
	// BatchCreateRecords creates up to the API's batch limit of rows in one call.
	BatchCreateRecords(ctx context.Context, creds Credentials, appToken, tableID string, fields []map[string]any) ([]Record, error)
	// BatchUpdateRecords updates up to the API's batch limit of rows in one call.
	BatchUpdateRecords(ctx context.Context, creds Credentials, appToken, tableID string, updates []RecordUpdate) error
	// DeleteRecord deletes a single row. The API offers no batch delete.
	DeleteRecord(ctx context.Context, creds Credentials, appToken, tableID, recordID string) error
}

// httpClient is the HTTP implementation of Client.
type httpClient struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	tokens  *tokenCache
	writes  *rate.Limiter
}

// NewClient creates a new Bitable API client.
func NewClient(cfg Config, logger *zap.Logger) Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeoutDuration,
		ResponseHeaderTimeout: timeoutDuration,
	}

	writeRate := cfg.WriteRatePerSecond
	if writeRate <= 0 {
		writeRate = 5
	}

	return &httpClient{
		baseURL: cfg.BaseURL,
		http: &http.Client{
			Transport: transport,
			Timeout:   timeoutDuration,
		},
		logger: logger,
		tokens: newTokenCache(),
		writes: rate.NewLimiter(rate.Limit(writeRate), writeRate),
	}
}

// envelope is the standard Feishu response wrapper.
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// do executes an authenticated request and decodes the envelope into data.
// endpoint is a short label used in errors and logs.
func (c *httpClient) do(ctx context.Context, creds Credentials, method, url, endpoint string, body any, data any) error {
	token, err := c.tokens.get(ctx, c, creds)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", endpoint, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &APIError{HTTPStatus: resp.StatusCode, Msg: "unparseable response", Endpoint: endpoint}
	}

	if resp.StatusCode != http.StatusOK || env.Code != 0 {
		apiErr := &APIError{HTTPStatus: resp.StatusCode, Code: env.Code, Msg: env.Msg, Endpoint: endpoint}
		c.logger.Warn("Feishu API error",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.Int("code", env.Code),
			zap.String("msg", env.Msg),
		)
		return apiErr
	}

	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
		}
	}

	return nil
}

// waitWrite blocks until the write limiter admits one call.
func (c *httpClient) waitWrite(ctx context.Context) error {
	return c.writes.Wait(ctx)
}
