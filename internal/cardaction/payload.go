// Package cardaction turns a card button click into a store mutation and a
// user-visible acknowledgment.
package cardaction

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/balfaz610/report-week/internal/report"
)

var (
	ErrNoActionValue = errors.New("no action value found")
	ErrNoRecordIDs   = errors.New("no record IDs to update")
)

// Payload is the decoded button action value.
type Payload struct {
	Status    report.Status
	RecordIDs []string
	Count     int
}

// ParsePayload decodes an action value. The transport layer sometimes
// re-encodes the JSON string once more, so a decode that yields a string is
// unwrapped and decoded again, at most twice.
func ParsePayload(raw json.RawMessage) (Payload, error) {
	text := []byte(strings.TrimSpace(string(raw)))
	if len(text) == 0 || string(text) == "null" {
		return Payload{}, ErrNoActionValue
	}

	for i := 0; i < 2; i++ {
		var inner string
		if err := json.Unmarshal(text, &inner); err != nil {
			break
		}
		text = []byte(inner)
	}

	var decoded struct {
		Action    string `json:"action"`
		RecordIDs string `json:"recordIds"`
		Count     int    `json:"count"`
	}
	if err := json.Unmarshal(text, &decoded); err != nil {
		return Payload{}, fmt.Errorf("decode action value: %w", err)
	}

	ids := splitRecordIDs(decoded.RecordIDs)
	if len(ids) == 0 {
		return Payload{}, ErrNoRecordIDs
	}

	count := decoded.Count
	if count <= 0 {
		count = len(ids)
	}

	return Payload{
		Status:    normalizeStatus(decoded.Action),
		RecordIDs: ids,
		Count:     count,
	}, nil
}

// splitRecordIDs splits the comma-joined id list. Duplicates are preserved;
// deduplication is the sender's responsibility.
func splitRecordIDs(joined string) []string {
	parts := strings.Split(joined, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func normalizeStatus(action string) report.Status {
	if strings.EqualFold(strings.TrimSpace(action), "approve") {
		return report.StatusApprove
	}
	return report.StatusReject
}
