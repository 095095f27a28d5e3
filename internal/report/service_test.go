package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/balfaz610/report-week/internal/clock"
	"github.com/balfaz610/report-week/internal/config"
	"github.com/balfaz610/report-week/internal/lark"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTable struct {
	records []lark.Record
	listErr error

	batches   [][]lark.RecordUpdate
	failBatch int // 1-based index of the batch call that fails, 0 = never
}

func (f *fakeTable) ListRecords(ctx context.Context, appToken, tableID string, pageSize int) ([]lark.Record, error) {
	_ = ctx
	_ = appToken
	_ = tableID
	_ = pageSize
	return f.records, f.listErr
}

func (f *fakeTable) BatchUpdateRecords(ctx context.Context, appToken, tableID string, updates []lark.RecordUpdate) error {
	_ = ctx
	_ = appToken
	_ = tableID
	f.batches = append(f.batches, updates)
	if f.failBatch > 0 && len(f.batches) == f.failBatch {
		return errors.New("batch call failed")
	}
	return nil
}

func testConfig() config.Config {
	return config.Config{
		BaseToken:    "base",
		TableID:      "tbl",
		ManagerField: "SM test",
		StatusField:  "Approver SM",
		WindowDays:   14,
	}
}

func newTestService(table *fakeTable, clk clock.Clock) *Service {
	return NewService(table, testConfig(), clk, zap.NewNop(), nil)
}

func manager(id, name string) []any {
	return []any{map[string]any{"id": id, "name": name}}
}

func TestListRecentByManagerGroupsInFirstSeenOrder(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	clk := clock.NewFakeClock(now)
	recent := float64(now.Add(-24 * time.Hour).UnixMilli())

	table := &fakeTable{records: []lark.Record{
		{RecordID: "r1", Fields: map[string]any{"SM test": manager("m2", "Bob"), "created_time": recent}},
		{RecordID: "r2", Fields: map[string]any{"SM test": manager("m1", "Alice"), "created_time": recent}},
		{RecordID: "r3", Fields: map[string]any{"SM test": manager("m2", "Bob"), "created_time": recent}},
	}}

	grouping, err := newTestService(table, clk).ListRecentByManager(context.Background())
	require.NoError(t, err)

	groups := grouping.All()
	require.Len(t, groups, 2)
	assert.Equal(t, "m2", groups[0].ManagerID)
	assert.Equal(t, "Bob", groups[0].ManagerName)
	assert.Len(t, groups[0].Records, 2)
	assert.Equal(t, "m1", groups[1].ManagerID)
}

func TestListRecentByManagerRecencyBoundary(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	clk := clock.NewFakeClock(now)
	cutoff := now.Add(-14 * 24 * time.Hour).UnixMilli()

	table := &fakeTable{records: []lark.Record{
		{RecordID: "at-cutoff", Fields: map[string]any{"SM test": manager("m1", "A"), "created_time": float64(cutoff)}},
		{RecordID: "older", Fields: map[string]any{"SM test": manager("m1", "A"), "created_time": float64(cutoff - 1)}},
		{RecordID: "newer", Fields: map[string]any{"SM test": manager("m1", "A"), "created_time": float64(cutoff + 1)}},
	}}

	grouping, err := newTestService(table, clk).ListRecentByManager(context.Background())
	require.NoError(t, err)

	group := grouping.Get("m1")
	require.NotNil(t, group)
	ids := make([]string, 0, len(group.Records))
	for _, rec := range group.Records {
		ids = append(ids, rec.RecordID)
	}
	// Only strictly-older-than-cutoff records are excluded.
	assert.Equal(t, []string{"at-cutoff", "newer"}, ids)
}

func TestListRecentByManagerSkipsUnassignedRecords(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	clk := clock.NewFakeClock(now)
	recent := float64(now.Add(-time.Hour).UnixMilli())

	table := &fakeTable{records: []lark.Record{
		{RecordID: "no-manager", Fields: map[string]any{"created_time": recent}},
		{RecordID: "bad-shape", Fields: map[string]any{"SM test": "just a string", "created_time": recent}},
		{RecordID: "empty-list", Fields: map[string]any{"SM test": []any{}, "created_time": recent}},
		{RecordID: "ok", Fields: map[string]any{"SM test": manager("m1", "A"), "created_time": recent}},
	}}

	grouping, err := newTestService(table, clk).ListRecentByManager(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, grouping.Len())
	require.Len(t, grouping.Get("m1").Records, 1)
	assert.Equal(t, "ok", grouping.Get("m1").Records[0].RecordID)
}

func TestListRecentByManagerSingleObjectPersonField(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	clk := clock.NewFakeClock(now)

	table := &fakeTable{records: []lark.Record{
		{RecordID: "r1", Fields: map[string]any{
			"SM test": map[string]any{"id": "m1", "en_name": "Alice"},
		}},
	}}

	grouping, err := newTestService(table, clk).ListRecentByManager(context.Background())
	require.NoError(t, err)

	group := grouping.Get("m1")
	require.NotNil(t, group)
	assert.Equal(t, "Alice", group.ManagerName)
}

func TestListRecentByManagerKeepsRecordsWithoutTimestamp(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	clk := clock.NewFakeClock(now)

	table := &fakeTable{records: []lark.Record{
		{RecordID: "r1", Fields: map[string]any{"SM test": manager("m1", "A")}},
	}}

	grouping, err := newTestService(table, clk).ListRecentByManager(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, grouping.Len())
}

func TestGetByManagerMissingApprover(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC))
	table := &fakeTable{}

	group, err := newTestService(table, clk).GetByManager(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, group)
}

func TestApplyStatusChunking(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC))

	for _, tc := range []struct {
		n          int
		wantChunks int
	}{
		{1, 1},
		{50, 1},
		{51, 2},
		{120, 3},
	} {
		table := &fakeTable{}
		svc := newTestService(table, clk)

		ids := make([]string, tc.n)
		for i := range ids {
			ids[i] = string(rune('a'+i%26)) + "-" + string(rune('0'+i%10))
		}

		result, err := svc.ApplyStatus(context.Background(), ids, StatusApprove)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, tc.n, result.UpdatedCount)
		require.Len(t, table.batches, tc.wantChunks, "n=%d", tc.n)

		// Every id appears exactly once, in order, and no chunk exceeds 50.
		var got []string
		for _, batch := range table.batches {
			assert.LessOrEqual(t, len(batch), 50)
			for _, u := range batch {
				got = append(got, u.RecordID)
				assert.Equal(t, "Approve", u.Fields["Approver SM"])
			}
		}
		assert.Equal(t, ids, got)
	}
}

func TestApplyStatusChunkFailurePropagates(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC))
	table := &fakeTable{failBatch: 2}
	svc := newTestService(table, clk)

	ids := make([]string, 60)
	for i := range ids {
		ids[i] = "r"
	}

	_, err := svc.ApplyStatus(context.Background(), ids, StatusReject)
	require.Error(t, err)
	// The first chunk was already written; there is no rollback.
	assert.Len(t, table.batches, 2)
}

func TestListRecentByManagerListError(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC))
	table := &fakeTable{listErr: errors.New("upstream down")}

	_, err := newTestService(table, clk).ListRecentByManager(context.Background())
	assert.Error(t, err)
}
