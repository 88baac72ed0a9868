package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quickstay/src/middlewares"
	"quickstay/src/types"
)

func userHandlers(g *gin.RouterGroup, s *server, protect gin.HandlerFunc) *gin.RouterGroup {
	g.Use(protect)
	g.
		GET("", func(ctx *gin.Context) {
			user := middlewares.CurrentUser(ctx)
			ctx.JSON(http.StatusOK, gin.H{
				"success":              true,
				"role":                 user.Role,
				"recentSearchedCities": user.RecentSearchedCities,
			})
		}).
		POST("/store-recent-search", func(ctx *gin.Context) {
			var body types.StoreRecentSearchRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				badRequest(ctx, err)
				return
			}
			cities, err := s.users.StoreRecentSearch(ctx.Request.Context(), middlewares.CurrentUser(ctx).ID, body.RecentSearchedCity)
			if err != nil {
				s.respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "City added", "recentSearchedCities": cities})
		}).
		GET("/bookings", s.userBookings)
	return g
}
