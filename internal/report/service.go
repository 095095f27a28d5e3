package report

import (
	"context"
	"fmt"
	"time"

	"github.com/balfaz610/report-week/internal/clock"
	"github.com/balfaz610/report-week/internal/config"
	"github.com/balfaz610/report-week/internal/lark"
	obsmetrics "github.com/balfaz610/report-week/internal/observability/metrics"
	"go.uber.org/zap"
)

const (
	listPageSize = 500
	// updateChunkSize stays well under the platform batch limit.
	updateChunkSize = 50
)

// TableClient is the slice of the bitable API the service consumes.
type TableClient interface {
	ListRecords(ctx context.Context, appToken, tableID string, pageSize int) ([]lark.Record, error)
	BatchUpdateRecords(ctx context.Context, appToken, tableID string, updates []lark.RecordUpdate) error
}

type Service struct {
	table   TableClient
	clock   clock.Clock
	log     *zap.Logger
	metrics *obsmetrics.Metrics

	baseToken    string
	tableID      string
	managerField string
	statusField  string
	window       time.Duration
}

func NewService(table TableClient, cfg config.Config, clk clock.Clock, log *zap.Logger, m *obsmetrics.Metrics) *Service {
	windowDays := cfg.WindowDays
	if windowDays <= 0 {
		windowDays = 14
	}
	return &Service{
		table:        table,
		clock:        clk,
		log:          log.Named("report"),
		metrics:      m,
		baseToken:    cfg.BaseToken,
		tableID:      cfg.TableID,
		managerField: cfg.ManagerField,
		statusField:  cfg.StatusField,
		window:       time.Duration(windowDays) * 24 * time.Hour,
	}
}

// ListRecentByManager fetches all records, keeps those inside the recency
// window, and groups them by approver. Records with no approver assignment
// are skipped silently. There is no server-side filter pushdown; a
// single-approver lookup is the full grouping plus a key lookup.
func (s *Service) ListRecentByManager(ctx context.Context) (*Grouping, error) {
	records, err := s.table.ListRecords(ctx, s.baseToken, s.tableID, listPageSize)
	if err != nil {
		return nil, fmt.Errorf("fetch report records: %w", err)
	}

	cutoff := s.clock.Now().Add(-s.window).UnixMilli()
	grouping := NewGrouping()
	for _, rec := range records {
		if ts := recordTime(rec); ts != 0 && ts < cutoff {
			continue
		}

		managerID, managerName, ok := managerIdentity(rec.Fields[s.managerField])
		if !ok {
			continue
		}

		grouping.Add(managerID, managerName, Record{
			RecordID: rec.RecordID,
			Fields:   rec.Fields,
		})
	}

	s.log.Info("grouped recent reports",
		zap.Int("records", len(records)),
		zap.Int("managers", grouping.Len()),
	)
	return grouping, nil
}

// GetByManager computes the full grouping and returns one approver's group,
// or nil when that approver has nothing to review.
func (s *Service) GetByManager(ctx context.Context, managerID string) (*ManagerGroup, error) {
	grouping, err := s.ListRecentByManager(ctx)
	if err != nil {
		return nil, err
	}
	return grouping.Get(managerID), nil
}

// ApplyStatus sets the approval status on every record, in sequential chunks
// of at most 50 ids. A chunk failure propagates immediately; chunks already
// written stay written, callers must tolerate partial application.
func (s *Service) ApplyStatus(ctx context.Context, recordIDs []string, status Status) (UpdateResult, error) {
	for start := 0; start < len(recordIDs); start += updateChunkSize {
		end := start + updateChunkSize
		if end > len(recordIDs) {
			end = len(recordIDs)
		}

		updates := make([]lark.RecordUpdate, 0, end-start)
		for _, id := range recordIDs[start:end] {
			updates = append(updates, lark.RecordUpdate{
				RecordID: id,
				Fields:   map[string]any{s.statusField: string(status)},
			})
		}

		if err := s.table.BatchUpdateRecords(ctx, s.baseToken, s.tableID, updates); err != nil {
			return UpdateResult{}, fmt.Errorf("update chunk at offset %d: %w", start, err)
		}
		if s.metrics != nil {
			s.metrics.UpdateChunks.Inc()
		}
	}

	if s.metrics != nil {
		s.metrics.RecordsUpdated.Add(float64(len(recordIDs)))
	}
	return UpdateResult{Success: true, UpdatedCount: len(recordIDs)}, nil
}

// recordTime reads the recency timestamp in epoch milliseconds: a dedicated
// field when present, falling back to the row's created time. Zero means no
// usable timestamp; such records are kept.
func recordTime(rec lark.Record) int64 {
	if ts := numericField(rec.Fields["created_time"]); ts != 0 {
		return ts
	}
	if ts := numericField(rec.Fields["date"]); ts != 0 {
		return ts
	}
	return rec.CreatedTime
}

func numericField(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}

// managerIdentity reads a person field, which arrives either as an array of
// user objects or as a single object.
func managerIdentity(v any) (id, name string, ok bool) {
	switch person := v.(type) {
	case []any:
		if len(person) == 0 {
			return "", "", false
		}
		return personFields(person[0])
	case map[string]any:
		return personFields(person)
	default:
		return "", "", false
	}
}

func personFields(v any) (string, string, bool) {
	person, ok := v.(map[string]any)
	if !ok {
		return "", "", false
	}
	id, _ := person["id"].(string)
	if id == "" {
		return "", "", false
	}
	name, _ := person["name"].(string)
	if name == "" {
		name, _ = person["en_name"].(string)
	}
	return id, name, true
}
