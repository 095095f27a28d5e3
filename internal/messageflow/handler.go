// Package messageflow answers inbound user messages with that approver's
// pending reports.
package messageflow

import (
	"context"

	"github.com/balfaz610/report-week/internal/lark"
	"github.com/balfaz610/report-week/internal/notify"
	"github.com/balfaz610/report-week/internal/report"
	"github.com/balfaz610/report-week/internal/webhook"
	"go.uber.org/zap"
)

const (
	noReportsText = "📭 Tidak ada laporan yang perlu direview dalam 2 minggu terakhir.\n\nAnda mungkin bukan Senior Manager atau belum ada laporan yang ditugaskan kepada Anda."
	errorText     = "❌ Terjadi kesalahan saat memproses permintaan Anda. Silakan coba lagi."
)

// Directory resolves user profiles.
type Directory interface {
	GetUser(ctx context.Context, userID string) (*lark.User, error)
}

// Reports looks up one approver's pending records.
type Reports interface {
	GetByManager(ctx context.Context, managerID string) (*report.ManagerGroup, error)
}

type Handler struct {
	directory  Directory
	reports    Reports
	dispatcher notify.Dispatcher
	log        *zap.Logger
}

func NewHandler(directory Directory, reports Reports, dispatcher notify.Dispatcher, log *zap.Logger) *Handler {
	return &Handler{
		directory:  directory,
		reports:    reports,
		dispatcher: dispatcher,
		log:        log.Named("messageflow"),
	}
}

// Handle replies to a user message with their report card, or a note that
// nothing needs review. Failures are answered with an apology text; the
// webhook acknowledgment is unaffected either way.
func (h *Handler) Handle(ctx context.Context, msg *webhook.MessageEvent) {
	userID := msg.SenderOpenID
	log := h.log.With(zap.String("user_id", userID))
	log.Info("message received", zap.String("text", msg.Text()))

	// Profile lookup is best-effort: a missing contact permission should
	// not block the reply.
	if user, err := h.directory.GetUser(ctx, userID); err != nil {
		log.Warn("user lookup failed, proceeding with id only", zap.Error(err))
	} else {
		log.Info("user identified", zap.String("name", user.Name))
	}

	group, err := h.reports.GetByManager(ctx, userID)
	if err != nil {
		log.Error("report lookup failed", zap.Error(err))
		h.apologize(ctx, userID)
		return
	}

	if group == nil || len(group.Records) == 0 {
		if err := h.dispatcher.SendText(ctx, userID, noReportsText); err != nil {
			log.Error("reply failed", zap.Error(err))
		}
		return
	}

	if err := h.dispatcher.SendReportCard(ctx, userID, group); err != nil {
		log.Error("report card delivery failed", zap.Error(err))
		h.apologize(ctx, userID)
		return
	}
	log.Info("reports sent", zap.Int("records", len(group.Records)), zap.String("manager_name", group.ManagerName))
}

func (h *Handler) apologize(ctx context.Context, userID string) {
	if err := h.dispatcher.SendText(ctx, userID, errorText); err != nil {
		h.log.Error("apology delivery failed", zap.String("user_id", userID), zap.Error(err))
	}
}
