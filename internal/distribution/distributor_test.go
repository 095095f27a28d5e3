package distribution

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/balfaz610/report-week/internal/clock"
	"github.com/balfaz610/report-week/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReports struct {
	grouping *report.Grouping
	err      error
}

func (f *fakeReports) ListRecentByManager(ctx context.Context) (*report.Grouping, error) {
	_ = ctx
	return f.grouping, f.err
}

type fakeDispatcher struct {
	sentTo  []string
	failFor map[string]bool
}

func (f *fakeDispatcher) SendReportCard(ctx context.Context, managerID string, group *report.ManagerGroup) error {
	_ = ctx
	_ = group
	if f.failFor[managerID] {
		return errors.New("delivery refused")
	}
	f.sentTo = append(f.sentTo, managerID)
	return nil
}

func (f *fakeDispatcher) SendText(ctx context.Context, userID, text string) error {
	_, _, _ = ctx, userID, text
	return nil
}

func (f *fakeDispatcher) ReplaceCard(ctx context.Context, messageID string, card any) error {
	_, _, _ = ctx, messageID, card
	return nil
}

func grouping(managers ...string) *report.Grouping {
	g := report.NewGrouping()
	for _, m := range managers {
		g.Add(m, "Manager "+m, report.Record{RecordID: "rec-" + m})
	}
	return g
}

func TestRunSendsOneCardPerManager(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC))
	dispatcher := &fakeDispatcher{}
	d := NewDistributor(&fakeReports{grouping: grouping("m1", "m2", "m3")}, dispatcher, clk, zap.NewNop(), nil)

	summary, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "success", summary.Status)
	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 3, summary.Sent)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, []string{"m1", "m2", "m3"}, dispatcher.sentTo)
}

func TestRunContinuesPastFailedRecipient(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC))
	dispatcher := &fakeDispatcher{failFor: map[string]bool{"m2": true}}
	d := NewDistributor(&fakeReports{grouping: grouping("m1", "m2", "m3")}, dispatcher, clk, zap.NewNop(), nil)

	summary, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Sent)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, []string{"m1", "m3"}, dispatcher.sentTo)
}

func TestRunWithNothingToSend(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC))
	dispatcher := &fakeDispatcher{}
	d := NewDistributor(&fakeReports{grouping: report.NewGrouping()}, dispatcher, clk, zap.NewNop(), nil)

	summary, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "No reports to send", summary.Message)
	assert.Empty(t, dispatcher.sentTo)
}

func TestRunPropagatesCollectionError(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC))
	d := NewDistributor(&fakeReports{err: errors.New("table unavailable")}, &fakeDispatcher{}, clk, zap.NewNop(), nil)

	_, err := d.Run(context.Background())
	assert.Error(t, err)
}
