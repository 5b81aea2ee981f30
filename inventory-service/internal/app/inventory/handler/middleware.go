package handler

import (
	"net/http"
	"strings"

	"vidasmart/inventory-service/internal/app/inventory/service"
	"vidasmart/inventory-service/internal/app/inventory/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Ключи gin контекста, которые выставляет Authenticate
const (
	ctxUserID = "user_id"
	ctxEmail  = "email"
	ctxRole   = "role"
)

// TokenValidator проверяет access token и возвращает claims
type TokenValidator interface {
	ValidateToken(token string) (*util.JWTClaims, error)
}

// AuthMiddleware проверяет JWT токен в запросах для Gin
type AuthMiddleware struct {
	tokens TokenValidator
}

// NewAuthMiddleware создает новый middleware для аутентификации
func NewAuthMiddleware(tokens TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate проверяет JWT токен и добавляет данные пользователя в контекст Gin
// и в context.Context запроса (для журнала событий)
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		// Проверяем формат "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		claims, err := m.tokens.ValidateToken(parts[1])
		if err != nil || claims.UserID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxRole, claims.Role)
		c.Request = c.Request.WithContext(service.WithActor(c.Request.Context(), claims.UserID))

		c.Next()
	}
}

// RequireRole пропускает только пользователей с одной из ролей
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ctxRole)
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	}
}

// currentUserID достаёт id пользователя, выставленный Authenticate
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(ctxUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}
