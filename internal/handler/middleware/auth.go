package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"giftcode-market/internal/domain/user"
	"giftcode-market/internal/pkg/cookie"
	"giftcode-market/internal/pkg/jwt"
	"giftcode-market/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthMiddleware struct {
	jwtService *jwt.Service
}

const (
	ctxUserIDKey    = "user_id"
	ctxUserRoleKey  = "user_role"
	ctxUserStoreKey = "store_id"
)

var roleHierarchy = map[user.Role]int{
	user.RoleCustomer: 1,
	user.RoleSeller:   2,
	user.RoleAdmin:    3,
}

func NewAuthMiddleware(jwtService *jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cookie.GetAccessToken(c)

		if token == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				token = strings.TrimSpace(authHeader[len("Bearer "):])
			}
		}

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Access token required",
			})
			c.Abort()
			return
		}

		claims, err := m.jwtService.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		setAuthContext(c, claims)
		c.Next()
	}
}

func setAuthContext(c *gin.Context, claims *jwt.Claims) {
	c.Set(ctxUserIDKey, claims.UserID)
	c.Set(ctxUserRoleKey, user.Role(claims.Role))
	if claims.StoreID != nil {
		c.Set(ctxUserStoreKey, *claims.StoreID)
	}
	c.Set("jwt_claims", map[string]any{
		"user_id": claims.UserID.String(),
		"role":    claims.Role,
	})
}

func hasMinimumRole(userRole, minRole user.Role) bool {
	userLevel, userExists := roleHierarchy[userRole]
	minLevel, minExists := roleHierarchy[minRole]
	return userExists && minExists && userLevel >= minLevel
}

func (m *AuthMiddleware) RequireRoleAtLeast(minRole user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		if !ok {
			// Unexpected error: should be used after RequireAuth()
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
			c.Abort()
			return
		}

		if !hasMinimumRole(role, minRole) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(ctxUserIDKey)
	if !exists {
		return uuid.Nil, false
	}

	id, ok := userID.(uuid.UUID)
	return id, ok
}

func GetUserRole(c *gin.Context) (user.Role, bool) {
	userRole, exists := c.Get(ctxUserRoleKey)
	if !exists {
		return "", false
	}

	role, ok := userRole.(user.Role)
	return role, ok
}

// GetStoreID returns the seller's store from context. Customers and
// admins without a store return false.
func GetStoreID(c *gin.Context) (uuid.UUID, bool) {
	storeID, exists := c.Get(ctxUserStoreKey)
	if !exists {
		return uuid.Nil, false
	}

	id, ok := storeID.(uuid.UUID)
	return id, ok
}

// GetAccessScope assembles the read-side authorization scope for the
// authenticated caller.
func GetAccessScope(c *gin.Context) (queries.AccessScope, bool) {
	userID, ok := GetUserID(c)
	if !ok {
		return queries.AccessScope{}, false
	}
	role, ok := GetUserRole(c)
	if !ok {
		return queries.AccessScope{}, false
	}

	scope := queries.AccessScope{
		UserID: userID,
		Role:   role.String(),
	}
	if storeID, ok := GetStoreID(c); ok {
		scope.StoreID = &storeID
	}
	return scope, true
}
