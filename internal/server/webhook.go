package server

import (
	"errors"
	"io"
	"net/http"

	obslogger "github.com/balfaz610/report-week/internal/observability/logger"
	"github.com/balfaz610/report-week/internal/webhook"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandleWebhookEvent is the full inbound pipeline: optional decryption,
// classification, token verification, dedup, then dispatch. Business errors
// inside the card action flow are embedded in 200 responses; only envelope
// and auth failures use non-200 statuses.
func (s *Server) HandleWebhookEvent(c *gin.Context) {
	ctx := c.Request.Context()
	log := obslogger.WithContext(ctx, s.log)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if ciphertext, ok := webhook.HasEncrypt(body); ok {
		plaintext, err := webhook.Decrypt(ciphertext, s.cfg.EncryptKey)
		if err != nil {
			if errors.Is(err, webhook.ErrEncryptionNotConfigured) {
				log.Error("encrypted payload received but no encrypt key configured")
				c.JSON(http.StatusBadRequest, gin.H{"error": "Encryption not configured"})
				return
			}
			// The cause stays in the logs; callers only see a generic
			// message.
			log.Error("envelope decryption failed", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Decryption failed"})
			return
		}
		body = plaintext
	}

	evt, err := webhook.Classify(body)
	if err != nil {
		log.Warn("unparseable webhook payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	if s.metrics != nil {
		s.metrics.WebhookEvents.WithLabelValues(evt.Kind.String()).Inc()
	}
	log.Info("webhook event", zap.String("type", evt.Kind.String()))

	switch evt.Kind {
	case webhook.KindChallenge:
		// Verification handshakes bypass all token checks.
		c.JSON(http.StatusOK, gin.H{"challenge": evt.Challenge})
		return

	case webhook.KindMalformed:
		log.Warn("malformed webhook payload", zap.String("reason", evt.Reason))
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return

	case webhook.KindLegacyCardAction:
		// Legacy card actions carry their own scoped token; the shared
		// verification token does not apply.
		s.handleCardAction(c, evt)
		return
	}

	if !s.verifyToken(evt.Token) {
		log.Warn("invalid verification token")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	switch evt.Kind {
	case webhook.KindIgnored:
		log.Info("event skipped", zap.String("reason", evt.Reason))
		c.JSON(http.StatusOK, gin.H{"ok": true})

	case webhook.KindCardAction:
		s.handleCardAction(c, evt)

	case webhook.KindMessage:
		if !s.shouldProcess(c, evt.DedupKey) {
			return
		}
		s.messages.Handle(c.Request.Context(), evt.Message)
		c.JSON(http.StatusOK, gin.H{"ok": true})

	default:
		log.Info("unknown event type", zap.String("event_type", evt.Reason))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func (s *Server) handleCardAction(c *gin.Context, evt webhook.InboundEvent) {
	if !s.shouldProcess(c, evt.DedupKey) {
		return
	}
	resp := s.processor.Handle(c.Request.Context(), evt.CardAction)
	c.JSON(http.StatusOK, resp)
}

// shouldProcess applies the dedup guard. Duplicates are acknowledged so the
// platform stops retrying, but nothing is re-run.
func (s *Server) shouldProcess(c *gin.Context, key string) bool {
	ctx := c.Request.Context()
	if !s.dedup.ShouldProcess(ctx, key) {
		if s.metrics != nil {
			s.metrics.DedupHits.Inc()
		}
		obslogger.WithContext(ctx, s.log).Info("duplicate event skipped", zap.String("dedup_key", key))
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return false
	}
	s.dedup.MarkProcessed(ctx, key)
	return true
}

// verifyToken checks the shared verification token. An empty configured
// token disables the check rather than failing closed.
func (s *Server) verifyToken(token string) bool {
	if s.cfg.VerificationToken == "" {
		return true
	}
	return token == s.cfg.VerificationToken
}
