package middleware

import (
	"net/http"
	"strings"

	authService "walletgate-backend/internal/service/auth"
	"walletgate-backend/internal/types"

	"github.com/gin-gonic/gin"
)

const (
	contextKeyWalletAddress = "wallet_address"
)

// AuthMiddleware JWT认证中间件
func AuthMiddleware(authSvc authService.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		claims, err := authSvc.VerifyToken(c.Request.Context(), parts[1])
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(contextKeyWalletAddress, claims.WalletAddress)
		c.Next()
	}
}

// GetUserFromContext 从gin context获取认证用户钱包地址
func GetUserFromContext(c *gin.Context) (string, bool) {
	walletAddress, ok := c.Get(contextKeyWalletAddress)
	if !ok {
		return "", false
	}
	addr, ok := walletAddress.(string)
	return addr, ok
}

// abortUnauthorized 统一401响应
func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, types.APIResponse{
		Success: false,
		Error: &types.APIError{
			Code:    "UNAUTHORIZED",
			Message: message,
		},
	})
}
