package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quickstay/src/middlewares"
	"quickstay/src/types"
)

func hotelHandlers(g *gin.RouterGroup, s *server, protect gin.HandlerFunc) *gin.RouterGroup {
	g.Use(protect)
	g.POST("", func(ctx *gin.Context) {
		var body types.RegisterHotelRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			badRequest(ctx, err)
			return
		}
		hotel, err := s.hotels.Register(ctx.Request.Context(), middlewares.CurrentUser(ctx).ID, &body)
		if err != nil {
			s.respondError(ctx, err)
			return
		}
		ctx.JSON(http.StatusCreated, gin.H{"success": true, "message": "Hotel Registered Successfully", "hotel": hotel})
	})
	return g
}
