package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"quickstay/src/lib"
	"quickstay/src/models"
)

const userKey = "user"

type UserResolver interface {
	GetOrCreate(ctx context.Context, identity *lib.Identity) (*models.User, error)
}

// Protect requires a bearer token from the identity provider and attaches the
// local user, creating it on first sight.
func Protect(verifier lib.IdentityVerifier, users UserResolver, logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		bearerToken := ctx.GetHeader("Authorization")
		scheme, reqToken, ok := strings.Cut(bearerToken, " ")
		reqToken = strings.TrimSpace(reqToken)
		if !ok || !strings.EqualFold(scheme, "Bearer") || reqToken == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not authenticated"})
			return
		}
		identity, err := verifier.Verify(ctx.Request.Context(), reqToken)
		if err != nil {
			logger.Debug("token rejected", zap.Error(err))
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not authenticated"})
			return
		}
		user, err := users.GetOrCreate(ctx.Request.Context(), identity)
		if err != nil {
			logger.Error("could not resolve user", zap.String("sub", identity.Subject), zap.Error(err))
			ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not load user"})
			return
		}
		ctx.Set(userKey, user)
		ctx.Set("id", user.ID)
		ctx.Set("role", string(user.Role))
		ctx.Next()
	}
}

// CurrentUser returns the user attached by Protect, or nil.
func CurrentUser(ctx *gin.Context) *models.User {
	v, ok := ctx.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
