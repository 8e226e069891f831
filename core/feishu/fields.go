package feishu

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// fieldsPageSize is the page size for field listing.
const fieldsPageSize = 100

// ListFields returns every column of the table, following pagination.
func (c *httpClient) ListFields(ctx context.Context, creds Credentials, appToken, tableID string) ([]Field, error) {
	base := fmt.Sprintf("%s/bitable/v1/apps/%s/tables/%s/fields", c.baseURL, appToken, tableID)

	var fields []Field
	pageToken := ""

	for {
		q := url.Values{}
		q.Set("page_size", fmt.Sprintf("%d", fieldsPageSize))
		if pageToken != "" {
			q.Set("page_token", pageToken)
		}

		var data struct {
			Items     []Field `json:"items"`
			HasMore   bool    `json:"has_more"`
			PageToken string  `json:"page_token"`
		}
		if err := c.do(ctx, creds, http.MethodGet, base+"?"+q.Encode(), "list_fields", nil, &data); err != nil {
			return nil, err
		}

		fields = append(fields, data.Items...)

		if !data.HasMore || data.PageToken == "" {
			return fields, nil
		}
		pageToken = data.PageToken
	}
}

// CreateField creates one column and returns it with its assigned ID.
// Creation is not idempotent by name; callers must list before creating.
func (c *httpClient) CreateField(ctx context.Context, creds Credentials, appToken, tableID string, spec FieldSpec) (*Field, error) {
	if err := c.waitWrite(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/bitable/v1/apps/%s/tables/%s/fields", c.baseURL, appToken, tableID)

	var data struct {
		Field Field `json:"field"`
	}
	if err := c.do(ctx, creds, http.MethodPost, endpoint, "create_field", spec, &data); err != nil {
		return nil, err
	}

	return &data.Field, nil
}
