package server

import (
	"net/http"
	"time"

	obslogger "github.com/balfaz610/report-week/internal/observability/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandleRoot is the health payload for uptime probes.
func (s *Server) HandleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "Weekly Report Bot is running",
		"timestamp": s.clock.Now().Format(time.RFC3339),
	})
}

// HandleCron triggers the report distribution synchronously and returns its
// aggregate result.
func (s *Server) HandleCron(c *gin.Context) {
	ctx := c.Request.Context()
	summary, err := s.distributor.Run(ctx)
	if err != nil {
		obslogger.WithContext(ctx, s.log).Error("distribution run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Distribution failed"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
