package middleware

import (
	"errors"
	"net/http"
	"strings"

	"healmymind_backend/internal/config"
	"healmymind_backend/internal/model"
	"healmymind_backend/internal/util"
	"healmymind_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// bearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively.
func bearerToken(c *gin.Context) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(c.GetHeader("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if errors.Is(err, util.ErrTokenExpired) {
			util.Error(c, http.StatusUnauthorized, "Token expired")
			c.Abort()
			return
		}
		if err != nil {
			logger.Log.Debug("rejected bearer token", zap.String("path", c.FullPath()), zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(util.ContextClaimsKey, claims)
		c.Next()
	}
}

// RequireRole admits admins and any of the listed roles.
func RequireRole(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.CurrentUser(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		if !user.HasRole(roles...) {
			logger.Log.Warn("role check failed",
				zap.Uint("userId", user.UserID),
				zap.String("role", string(user.Role)),
				zap.String("path", c.FullPath()),
			)
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
