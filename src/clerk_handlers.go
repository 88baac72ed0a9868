package main

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"quickstay/src/lib"
)

func clerkWebhookRoute(g *gin.RouterGroup, s *server) *gin.RouterGroup {
	handler := func(ctx *gin.Context) {
		if s.webhooks == nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "identity webhook not configured"})
			return
		}
		payload, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxWebhookBodyBytes))
		if err != nil {
			s.logger.Error("reading identity webhook body", zap.Error(err))
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		if err := s.webhooks.Verify(payload, ctx.Request.Header); err != nil {
			s.logger.Warn("identity webhook rejected", zap.Error(err))
			ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		var event lib.ClerkEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			badRequest(ctx, err)
			return
		}
		if err := s.users.SyncFromWebhook(ctx.Request.Context(), &event); err != nil {
			s.respondError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"received": true})
	}
	g.POST("/clerk", handler)
	g.POST("/clerk-webhook", handler)
	return g
}
