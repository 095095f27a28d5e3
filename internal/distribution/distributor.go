// Package distribution sends the weekly report cards to every approver with
// pending records.
package distribution

import (
	"context"
	"fmt"

	"github.com/balfaz610/report-week/internal/clock"
	"github.com/balfaz610/report-week/internal/notify"
	obsmetrics "github.com/balfaz610/report-week/internal/observability/metrics"
	"github.com/balfaz610/report-week/internal/report"
	"go.uber.org/zap"
)

// Reports is the grouping slice the distributor consumes.
type Reports interface {
	ListRecentByManager(ctx context.Context) (*report.Grouping, error)
}

// Summary aggregates one distribution run.
type Summary struct {
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	Processed  int    `json:"processed"`
	Sent       int    `json:"sent"`
	Failed     int    `json:"failed"`
	DurationMs int64  `json:"duration_ms"`
}

type Distributor struct {
	reports    Reports
	dispatcher notify.Dispatcher
	clock      clock.Clock
	log        *zap.Logger
	metrics    *obsmetrics.Metrics
}

func NewDistributor(reports Reports, dispatcher notify.Dispatcher, clk clock.Clock, log *zap.Logger, m *obsmetrics.Metrics) *Distributor {
	return &Distributor{
		reports:    reports,
		dispatcher: dispatcher,
		clock:      clk,
		log:        log.Named("distribution"),
		metrics:    m,
	}
}

// Run sends one report card per approver group. A failure for one recipient
// is counted and does not stop the rest of the batch.
func (d *Distributor) Run(ctx context.Context) (Summary, error) {
	start := d.clock.Now()

	grouping, err := d.reports.ListRecentByManager(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("collect reports: %w", err)
	}

	groups := grouping.All()
	if len(groups) == 0 {
		d.log.Info("no reports to send")
		return Summary{Status: "success", Message: "No reports to send"}, nil
	}

	sent, failed := 0, 0
	for _, group := range groups {
		if len(group.Records) == 0 {
			continue
		}

		if err := d.dispatcher.SendReportCard(ctx, group.ManagerID, group); err != nil {
			failed++
			d.log.Error("report delivery failed",
				zap.String("manager_id", group.ManagerID),
				zap.String("manager_name", group.ManagerName),
				zap.Error(err),
			)
			if d.metrics != nil {
				d.metrics.ReportsFailed.Inc()
			}
			continue
		}

		sent++
		if d.metrics != nil {
			d.metrics.ReportsSent.Inc()
		}
	}

	summary := Summary{
		Status:     "success",
		Processed:  len(groups),
		Sent:       sent,
		Failed:     failed,
		DurationMs: d.clock.Now().Sub(start).Milliseconds(),
	}
	d.log.Info("distribution finished",
		zap.Int("processed", summary.Processed),
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
		zap.Int64("duration_ms", summary.DurationMs),
	)
	return summary, nil
}
