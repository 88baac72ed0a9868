package main

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"quickstay/src/controllers"
	"quickstay/src/middlewares"
	"quickstay/src/types"
)

func roomHandlers(g *gin.RouterGroup, s *server, protect gin.HandlerFunc) *gin.RouterGroup {
	g.GET("", func(ctx *gin.Context) {
		rooms, err := s.rooms.ListAvailable(ctx.Request.Context())
		if err != nil {
			s.respondError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"success": true, "rooms": rooms})
	})

	auth := g.Group("")
	auth.Use(protect)
	auth.
		POST("", func(ctx *gin.Context) {
			var body types.CreateRoomRequestBody
			if err := ctx.ShouldBind(&body); err != nil {
				badRequest(ctx, err)
				return
			}
			amenities, err := parseAmenities(body.Amenities)
			if err != nil {
				badRequest(ctx, err)
				return
			}
			var files []*multipart.FileHeader
			if form, err := ctx.MultipartForm(); err == nil {
				files = form.File["images"]
			}
			if len(files) > types.MaxRoomImages {
				badRequest(ctx, fmt.Errorf("at most %d images per room", types.MaxRoomImages))
				return
			}
			uploads := make([]controllers.Upload, 0, len(files))
			for _, fh := range files {
				f, err := fh.Open()
				if err != nil {
					badRequest(ctx, err)
					return
				}
				defer f.Close()
				uploads = append(uploads, controllers.Upload{
					Filename:    fh.Filename,
					ContentType: fh.Header.Get("Content-Type"),
					Body:        f,
				})
			}
			room, err := s.rooms.Create(ctx.Request.Context(), middlewares.CurrentUser(ctx).ID, &controllers.CreateRoomInput{
				RoomType:      types.RoomType(body.RoomType),
				PricePerNight: body.PricePerNight,
				Amenities:     amenities,
				Images:        uploads,
			})
			if err != nil {
				s.respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"success": true, "message": "Room created successfully", "room": room})
		}).
		GET("/owner", func(ctx *gin.Context) {
			rooms, err := s.rooms.ListForOwner(ctx.Request.Context(), middlewares.CurrentUser(ctx).ID)
			if err != nil {
				s.respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "rooms": rooms})
		}).
		POST("/toggle-availability", func(ctx *gin.Context) {
			var body types.ToggleAvailabilityRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				badRequest(ctx, err)
				return
			}
			room, err := s.rooms.ToggleAvailability(ctx.Request.Context(), middlewares.CurrentUser(ctx).ID, body.RoomID)
			if err != nil {
				s.respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Room availability Updated", "isAvailable": room.IsAvailable})
		})
	return g
}

// parseAmenities accepts a JSON array or a comma separated list.
func parseAmenities(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "[") {
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return nil, fmt.Errorf("invalid amenities: %w", err)
		}
		return list, nil
	}
	return strings.Split(raw, ","), nil
}
