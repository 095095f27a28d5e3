package cardaction

import (
	"context"
	"fmt"
	"strings"

	"github.com/balfaz610/report-week/internal/config"
	obsmetrics "github.com/balfaz610/report-week/internal/observability/metrics"
	"github.com/balfaz610/report-week/internal/report"
	"github.com/balfaz610/report-week/internal/tasks"
	"github.com/balfaz610/report-week/internal/webhook"
	"go.uber.org/zap"
)

// StoreUpdater writes the approval decision to the table store.
type StoreUpdater interface {
	ApplyStatus(ctx context.Context, recordIDs []string, status report.Status) (report.UpdateResult, error)
}

// CardUpdater replaces an existing card message so its buttons disappear.
type CardUpdater interface {
	ReplaceCard(ctx context.Context, messageID string, card any) error
}

// ResultRenderer builds the opaque replacement card body.
type ResultRenderer interface {
	ResultCard(status report.Status, count int, success bool) any
}

// Toast is the transient notification shown to the clicking user.
type Toast struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Response is returned to the platform with HTTP 200. Business failures are
// embedded here, never surfaced as transport errors, because the chat client
// cannot usefully retry a button click on its own.
type Response struct {
	Toast Toast `json:"toast"`
	Card  any   `json:"card,omitempty"`
}

type Processor struct {
	store    StoreUpdater
	cards    CardUpdater
	renderer ResultRenderer
	runner   *tasks.Runner
	policy   string
	log      *zap.Logger
	metrics  *obsmetrics.Metrics
}

func NewProcessor(
	store StoreUpdater,
	cards CardUpdater,
	renderer ResultRenderer,
	runner *tasks.Runner,
	cfg config.Config,
	log *zap.Logger,
	m *obsmetrics.Metrics,
) *Processor {
	return &Processor{
		store:    store,
		cards:    cards,
		renderer: renderer,
		runner:   runner,
		policy:   cfg.ConsistencyPolicy,
		log:      log.Named("cardaction"),
		metrics:  m,
	}
}

// Handle processes one button click end to end. It never returns an error:
// every failure is converted to an error toast.
func (p *Processor) Handle(ctx context.Context, evt *webhook.CardActionEvent) Response {
	payload, err := ParsePayload(evt.Value)
	if err != nil {
		p.log.Warn("invalid card action payload", zap.Error(err))
		p.count("unknown", "invalid")
		return errorResponse()
	}

	log := p.log.With(
		zap.String("action", string(payload.Status)),
		zap.Int("records", len(payload.RecordIDs)),
	)

	p.mutate(ctx, log, payload)

	// The mutation outcome is deliberately not reflected here: the write
	// either already succeeded (strong policy) or failure is surfaced to
	// operators through logs and metrics. See the error handling notes in
	// DESIGN.md.
	card := p.renderer.ResultCard(payload.Status, payload.Count, true)

	if evt.OpenMessageID != "" {
		if err := p.cards.ReplaceCard(ctx, evt.OpenMessageID, card); err != nil {
			log.Warn("card replacement failed", zap.String("message_id", evt.OpenMessageID), zap.Error(err))
		}
	} else {
		log.Warn("no message id on card action, skipping explicit card update")
	}

	p.count(string(payload.Status), "ok")
	return Response{
		Toast: Toast{
			Type: "success",
			Content: fmt.Sprintf("%d laporan sedang diproses untuk di-%s...",
				payload.Count, strings.ToLower(string(payload.Status))),
		},
		Card: card,
	}
}

// mutate applies the decision under the configured consistency policy:
// strong awaits the write so the store reflects the decision before the
// response returns; eventual hands it to the background runner and accepts
// that the outcome is only observable via logs and metrics.
func (p *Processor) mutate(ctx context.Context, log *zap.Logger, payload Payload) {
	if p.policy == config.PolicyEventual && p.runner != nil {
		ids, status := payload.RecordIDs, payload.Status
		err := p.runner.Enqueue(tasks.Task{
			Name: "apply-status",
			Run: func(taskCtx context.Context) error {
				if _, err := p.store.ApplyStatus(taskCtx, ids, status); err != nil {
					if p.metrics != nil {
						p.metrics.UpdateFailures.Inc()
					}
					return err
				}
				return nil
			},
		})
		if err != nil {
			log.Error("could not defer status update, applying inline", zap.Error(err))
			p.applyNow(ctx, log, payload)
		}
		return
	}

	p.applyNow(ctx, log, payload)
}

func (p *Processor) applyNow(ctx context.Context, log *zap.Logger, payload Payload) {
	result, err := p.store.ApplyStatus(ctx, payload.RecordIDs, payload.Status)
	if err != nil {
		if p.metrics != nil {
			p.metrics.UpdateFailures.Inc()
		}
		log.Error("status update failed", zap.Error(err))
		return
	}
	log.Info("records updated", zap.Int("updated", result.UpdatedCount))
}

func (p *Processor) count(action, outcome string) {
	if p.metrics != nil {
		p.metrics.CardActions.WithLabelValues(action, outcome).Inc()
	}
}

func errorResponse() Response {
	return Response{
		Toast: Toast{
			Type:    "error",
			Content: "Terjadi kesalahan sistem",
		},
	}
}
