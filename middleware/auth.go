package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yassir1410/ModernToDoList/config"
	"github.com/yassir1410/ModernToDoList/services"
	"github.com/yassir1410/ModernToDoList/utils"
)

// gin.Context 中的键
const (
	UsernameKey  = "username"
	UserIDKey    = "uid"
	ClaimsKey    = "claims"
	RequestIDKey = "requestID"
)

// AuthMiddleware 认证中间件，接受 "Bearer <token>" 或裸令牌
func AuthMiddleware(tokens *utils.TokenManager, sessions services.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimSpace(c.GetHeader("Authorization"))
		if len(tokenString) > 7 && strings.EqualFold(tokenString[:7], "Bearer ") {
			tokenString = strings.TrimSpace(tokenString[7:])
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		claims, err := tokens.ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		revoked, err := sessions.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			config.Logger.Errorw("查询令牌状态失败", "error", err, "username", claims.Username)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		c.Set(UsernameKey, claims.Username)
		c.Set(UserIDKey, claims.UserID)
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}
