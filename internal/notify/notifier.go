package notify

import (
	"context"
	"fmt"

	"github.com/balfaz610/report-week/internal/lark"
	"github.com/balfaz610/report-week/internal/report"
	"go.uber.org/zap"
)

// Messenger is the IM transport slice the dispatcher consumes.
type Messenger interface {
	SendMessage(ctx context.Context, receiveID, msgType string, content any) (string, error)
	PatchMessage(ctx context.Context, messageID string, content any) error
}

// Dispatcher delivers report notifications and card replacements.
type Dispatcher interface {
	SendReportCard(ctx context.Context, managerID string, group *report.ManagerGroup) error
	SendText(ctx context.Context, userID, text string) error
	ReplaceCard(ctx context.Context, messageID string, card any) error
}

type larkDispatcher struct {
	im       Messenger
	renderer *Renderer
	log      *zap.Logger
}

func NewDispatcher(im Messenger, renderer *Renderer, log *zap.Logger) Dispatcher {
	return &larkDispatcher{
		im:       im,
		renderer: renderer,
		log:      log.Named("notify"),
	}
}

func (d *larkDispatcher) SendReportCard(ctx context.Context, managerID string, group *report.ManagerGroup) error {
	card := d.renderer.ReportCard(group)
	messageID, err := d.im.SendMessage(ctx, managerID, lark.MsgTypeInteractive, card)
	if err != nil {
		return fmt.Errorf("send report card to %s: %w", managerID, err)
	}
	d.log.Info("report card sent",
		zap.String("manager_id", managerID),
		zap.String("message_id", messageID),
		zap.Int("records", len(group.Records)),
	)
	return nil
}

func (d *larkDispatcher) SendText(ctx context.Context, userID, text string) error {
	if _, err := d.im.SendMessage(ctx, userID, lark.MsgTypeText, map[string]string{"text": text}); err != nil {
		return fmt.Errorf("send text to %s: %w", userID, err)
	}
	return nil
}

func (d *larkDispatcher) ReplaceCard(ctx context.Context, messageID string, card any) error {
	return d.im.PatchMessage(ctx, messageID, card)
}
