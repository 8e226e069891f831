package feishu

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// maxSearchPageSize is the largest page the search endpoint accepts.
const maxSearchPageSize = 500

// ListAllRecords returns every row of the table via the cursor-paginated
// search endpoint. The search index is eventually consistent; rows written
// moments ago may be missing from the result.
func (c *httpClient) ListAllRecords(ctx context.Context, creds Credentials, appToken, tableID string, pageSize int) ([]Record, error) {
	if pageSize <= 0 || pageSize > maxSearchPageSize {
		pageSize = maxSearchPageSize
	}

	endpoint := fmt.Sprintf("%s/bitable/v1/apps/%s/tables/%s/records/search", c.baseURL, appToken, tableID)

	var records []Record
	pageToken := ""

	for {
		body := map[string]any{
			"page_size": pageSize,
		}
		reqURL := endpoint
		if pageToken != "" {
			q := url.Values{}
			q.Set("page_token", pageToken)
			reqURL = endpoint + "?" + q.Encode()
		}

		var data struct {
			Items     []Record `json:"items"`
			HasMore   bool     `json:"has_more"`
			PageToken string   `json:"page_token"`
		}
		if err := c.do(ctx, creds, http.MethodPost, reqURL, "search_records", body, &data); err != nil {
			return nil, err
		}

		records = append(records, data.Items...)

		if !data.HasMore || data.PageToken == "" {
			return records, nil
		}
		pageToken = data.PageToken
	}
}

// BatchCreateRecords creates rows in one call. The caller is responsible
// for keeping the batch within the API limit.
func (c *httpClient) BatchCreateRecords(ctx context.Context, creds Credentials, appToken, tableID string, fields []map[string]any) ([]Record, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	if err := c.waitWrite(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/bitable/v1/apps/%s/tables/%s/records/batch_create", c.baseURL, appToken, tableID)

	records := make([]map[string]any, 0, len(fields))
	for _, f := range fields {
		records = append(records, map[string]any{"fields": f})
	}

	var data struct {
		Records []Record `json:"records"`
	}
	if err := c.do(ctx, creds, http.MethodPost, endpoint, "batch_create", map[string]any{"records": records}, &data); err != nil {
		return nil, err
	}

	return data.Records, nil
}

// BatchUpdateRecords updates rows in one call. The caller is responsible
// for keeping the batch within the API limit.
func (c *httpClient) BatchUpdateRecords(ctx context.Context, creds Credentials, appToken, tableID string, updates []RecordUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	if err := c.waitWrite(ctx); err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/bitable/v1/apps/%s/tables/%s/records/batch_update", c.baseURL, appToken, tableID)

	return c.do(ctx, creds, http.MethodPost, endpoint, "batch_update", map[string]any{"records": updates}, nil)
}

// DeleteRecord deletes a single row. The API offers no batch delete for
// this domain, so callers issue deletes one at a time.
func (c *httpClient) DeleteRecord(ctx context.Context, creds Credentials, appToken, tableID, recordID string) error {
	if err := c.waitWrite(ctx); err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/bitable/v1/apps/%s/tables/%s/records/%s", c.baseURL, appToken, tableID, recordID)

	return c.do(ctx, creds, http.MethodDelete, endpoint, "delete_record", nil, nil)
}
