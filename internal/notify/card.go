// Package notify renders and delivers chat notifications. Card bodies are
// opaque to every other package; only the renderer knows their layout.
package notify

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/balfaz610/report-week/internal/clock"
	"github.com/balfaz610/report-week/internal/report"
)

const summaryLimit = 5

// Renderer builds card bodies. The rest of the pipeline treats the returned
// values as black boxes.
type Renderer struct {
	clock clock.Clock
}

func NewRenderer(clk clock.Clock) *Renderer {
	return &Renderer{clock: clk}
}

// ReportCard builds the interactive review card for one approver: a summary
// of up to five records and approve/reject buttons carrying the action
// payload for every record at once.
func (r *Renderer) ReportCard(group *report.ManagerGroup) any {
	recordIDs := make([]string, 0, len(group.Records))
	for _, rec := range group.Records {
		recordIDs = append(recordIDs, rec.RecordID)
	}
	count := len(group.Records)

	lines := make([]string, 0, summaryLimit)
	for i, rec := range group.Records {
		if i == summaryLimit {
			break
		}
		employee := stringField(rec.Fields, "Employee Name", "Unknown")
		status := stringField(rec.Fields, "status", "Pending")
		lines = append(lines, fmt.Sprintf("%d. %s - %s", i+1, employee, status))
	}
	summary := strings.Join(lines, "\n")
	if count > summaryLimit {
		summary += fmt.Sprintf("\n... dan %d laporan lainnya", count-summaryLimit)
	}

	return map[string]any{
		"config": map[string]any{"wide_screen_mode": true},
		"header": map[string]any{
			"template": "blue",
			"title": map[string]any{
				"tag":     "plain_text",
				"content": "📊 Weekly Report - Perlu Review",
			},
		},
		"elements": []any{
			markdownBlock(fmt.Sprintf("**Senior Manager:** %s\n**Jumlah Laporan:** %d laporan (2 minggu terakhir)", group.ManagerName, count)),
			map[string]any{"tag": "hr"},
			markdownBlock(fmt.Sprintf("**Ringkasan Laporan:**\n%s", summary)),
			map[string]any{"tag": "hr"},
			noteBlock("Klik tombol di bawah untuk menyetujui atau menolak semua laporan sekaligus."),
			map[string]any{
				"tag": "action",
				"actions": []any{
					actionButton("✅ Approve All", "primary", report.StatusApprove, recordIDs),
					actionButton("❌ Reject All", "danger", report.StatusReject, recordIDs),
				},
			},
		},
	}
}

// ResultCard builds the replacement card shown after a decision.
func (r *Renderer) ResultCard(status report.Status, count int, success bool) any {
	approved := status == report.StatusApprove
	emoji, actionText, color := "❌", "Ditolak", "red"
	if approved {
		emoji, actionText, color = "✅", "Disetujui", "green"
	}

	content := "Gagal memproses laporan. Silakan coba lagi."
	if success {
		content = fmt.Sprintf("**%d laporan** telah berhasil %s!", count, strings.ToLower(actionText))
	}

	return map[string]any{
		"config": map[string]any{"wide_screen_mode": true},
		"header": map[string]any{
			"template": color,
			"title": map[string]any{
				"tag":     "plain_text",
				"content": fmt.Sprintf("%s Laporan %s", emoji, actionText),
			},
		},
		"elements": []any{
			markdownBlock(content),
			noteBlock(fmt.Sprintf("Diproses pada: %s", r.clock.Now().Format(time.RFC1123))),
		},
	}
}

func actionButton(label, style string, status report.Status, recordIDs []string) map[string]any {
	// The value travels as a JSON-encoded string; the processor tolerates
	// it arriving encoded once more by the transport.
	value, _ := json.Marshal(map[string]any{
		"action":    string(status),
		"recordIds": strings.Join(recordIDs, ","),
		"count":     len(recordIDs),
	})
	return map[string]any{
		"tag": "button",
		"text": map[string]any{
			"tag":     "plain_text",
			"content": label,
		},
		"type":  style,
		"value": string(value),
	}
}

func markdownBlock(content string) map[string]any {
	return map[string]any{
		"tag": "div",
		"text": map[string]any{
			"tag":     "lark_md",
			"content": content,
		},
	}
}

func noteBlock(content string) map[string]any {
	return map[string]any{
		"tag": "note",
		"elements": []any{
			map[string]any{
				"tag":     "plain_text",
				"content": content,
			},
		},
	}
}

func stringField(fields map[string]any, key, def string) string {
	if v, ok := fields[key].(string); ok && v != "" {
		return v
	}
	return def
}
