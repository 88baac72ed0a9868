package main

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Stripe refuses to deliver event payloads larger than this.
const maxWebhookBodyBytes = int64(65536)

func stripeWebhookRoute(g *gin.RouterGroup, s *server) *gin.RouterGroup {
	g.POST("/stripe", func(ctx *gin.Context) {
		payload, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxWebhookBodyBytes))
		if err != nil {
			s.logger.Error("reading stripe webhook body", zap.Error(err))
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		event, err := s.gateway.ParseWebhook(payload, ctx.GetHeader("Stripe-Signature"))
		if err != nil {
			s.logger.Warn("stripe webhook rejected", zap.Error(err))
			ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Webhook Error: " + err.Error()})
			return
		}
		s.logger.Info("stripe event", zap.String("id", event.ID), zap.String("type", event.Type))
		if err := s.payments.HandleEvent(ctx.Request.Context(), event); err != nil {
			s.respondError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"received": true})
	})
	return g
}
