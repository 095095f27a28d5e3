package lark

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Record is a bitable row as returned by the records list API.
type Record struct {
	RecordID    string         `json:"record_id"`
	Fields      map[string]any `json:"fields"`
	CreatedTime int64          `json:"created_time"`
}

// RecordUpdate addresses one row for a batch field write.
type RecordUpdate struct {
	RecordID string         `json:"record_id"`
	Fields   map[string]any `json:"fields"`
}

type listRecordsData struct {
	Items     []Record `json:"items"`
	HasMore   bool     `json:"has_more"`
	PageToken string   `json:"page_token"`
}

// ListRecords fetches every record of a table, following page tokens.
func (c *Client) ListRecords(ctx context.Context, appToken, tableID string, pageSize int) ([]Record, error) {
	if pageSize <= 0 {
		pageSize = 500
	}

	var (
		records   []Record
		pageToken string
	)
	for {
		query := url.Values{}
		query.Set("page_size", strconv.Itoa(pageSize))
		if pageToken != "" {
			query.Set("page_token", pageToken)
		}

		var data listRecordsData
		path := fmt.Sprintf("/open-apis/bitable/v1/apps/%s/tables/%s/records", appToken, tableID)
		if err := c.doJSON(ctx, http.MethodGet, path, query, nil, &data); err != nil {
			return nil, fmt.Errorf("list records: %w", err)
		}

		records = append(records, data.Items...)
		if !data.HasMore || data.PageToken == "" {
			return records, nil
		}
		pageToken = data.PageToken
	}
}

// BatchUpdateRecords writes the given field values in a single batch call.
// Callers are responsible for staying under the platform batch size limit.
func (c *Client) BatchUpdateRecords(ctx context.Context, appToken, tableID string, updates []RecordUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	path := fmt.Sprintf("/open-apis/bitable/v1/apps/%s/tables/%s/records/batch_update", appToken, tableID)
	body := map[string]any{"records": updates}
	if err := c.doJSON(ctx, http.MethodPost, path, nil, body, nil); err != nil {
		return fmt.Errorf("batch update records: %w", err)
	}
	return nil
}
