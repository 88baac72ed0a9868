package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quickstay/src/controllers"
	"quickstay/src/middlewares"
	"quickstay/src/types"
	"quickstay/src/utils"
)

func bookingHandlers(g *gin.RouterGroup, s *server, protect gin.HandlerFunc) *gin.RouterGroup {
	g.POST("/check-availability", func(ctx *gin.Context) {
		var body types.CheckAvailabilityRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			badRequest(ctx, err)
			return
		}
		checkIn, _ := utils.ParseDate(body.CheckInDate)
		checkOut, _ := utils.ParseDate(body.CheckOutDate)
		available, err := s.availability.IsAvailable(ctx.Request.Context(), body.Room, checkIn, checkOut)
		if err != nil {
			s.respondError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"success": true, "isAvailable": available})
	})

	auth := g.Group("")
	auth.Use(protect)
	auth.
		POST("/book", func(ctx *gin.Context) {
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				badRequest(ctx, err)
				return
			}
			checkIn, _ := utils.ParseDate(body.CheckInDate)
			checkOut, _ := utils.ParseDate(body.CheckOutDate)
			_, err := s.bookings.Create(ctx.Request.Context(), &controllers.CreateBookingInput{
				RoomID:   body.Room,
				CheckIn:  checkIn,
				CheckOut: checkOut,
				Guests:   int(body.Guests),
				User:     middlewares.CurrentUser(ctx),
			})
			if err != nil {
				s.respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Booking created successfully"})
		}).
		GET("/user", s.userBookings).
		GET("/hotel", s.hotelBookings).
		POST("/stripe-payment", func(ctx *gin.Context) {
			var body types.StripePaymentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				badRequest(ctx, err)
				return
			}
			origin := ctx.GetHeader("Origin")
			if origin == "" {
				origin = s.cfg.AppHost
			}
			user := middlewares.CurrentUser(ctx)
			url, err := s.checkout.CreateSession(ctx.Request.Context(), body.BookingID, user.ID, origin)
			if err != nil {
				s.logger.Sugar().Warnf("checkout for booking %s failed: %s", body.BookingID, err.Error())
				ctx.JSON(statusFor(err), gin.H{"success": false, "message": "Payment Failed"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "url": url})
		}).
		POST("/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, err)
				return
			}
			booking, err := s.bookings.Cancel(ctx.Request.Context(), params.ID, middlewares.CurrentUser(ctx).ID)
			if err != nil {
				s.respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "booking": booking})
		})
	return g
}

func (s *server) userBookings(ctx *gin.Context) {
	bookings, err := s.bookings.ListForUser(ctx.Request.Context(), middlewares.CurrentUser(ctx).ID)
	if err != nil {
		s.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "bookings": bookings})
}

func (s *server) hotelBookings(ctx *gin.Context) {
	dashboard, err := s.bookings.HotelDashboard(ctx.Request.Context(), middlewares.CurrentUser(ctx).ID)
	if err != nil {
		s.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "dashboardData": dashboard})
}
