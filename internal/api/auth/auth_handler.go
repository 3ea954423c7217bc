package auth

import (
	"errors"
	"net/http"

	authService "walletgate-backend/internal/service/auth"
	"walletgate-backend/internal/types"
	"walletgate-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handler 认证处理器
type Handler struct {
	authService authService.Service
}

// NewHandler 创建认证处理器
func NewHandler(authService authService.Service) *Handler {
	return &Handler{authService: authService}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	authGroup := router.Group("/auth")
	{
		// 获取签名挑战
		authGroup.POST("/nonce", h.GetNonce)
		// 钱包签名登录
		authGroup.POST("/connect", h.WalletConnect)
		// 刷新token
		authGroup.POST("/refresh", h.RefreshToken)
	}
}

// GetNonce 获取签名挑战
// @Summary 获取签名挑战
// @Description 为指定钱包地址生成一次性nonce，账户不存在时隐式创建
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body types.NonceRequest true "钱包地址"
// @Success 200 {object} types.APIResponse{data=types.NonceResponse}
// @Failure 400 {object} types.APIResponse{error=types.APIError}
// @Failure 500 {object} types.APIResponse{error=types.APIError}
// @Router /api/v1/auth/nonce [post]
func (h *Handler) GetNonce(c *gin.Context) {
	var req types.NonceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.APIResponse{
			Success: false,
			Error: &types.APIError{
				Code:    "INVALID_REQUEST",
				Message: "Invalid request body",
				Details: err.Error(),
			},
		})
		return
	}

	resp, err := h.authService.GetNonce(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, authService.ErrInvalidAddress) {
			c.JSON(http.StatusBadRequest, types.APIResponse{
				Success: false,
				Error: &types.APIError{
					Code:    "INVALID_ADDRESS",
					Message: "Invalid wallet address",
				},
			})
			return
		}
		logger.Error("GetNonce failed", err, "wallet_address", req.WalletAddress)
		c.JSON(http.StatusInternalServerError, types.APIResponse{
			Success: false,
			Error: &types.APIError{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to generate nonce",
			},
		})
		return
	}

	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: resp})
}

// WalletConnect 钱包签名登录
// @Summary 钱包签名登录
// @Description 校验personal_sign签名并签发JWT token对
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body types.WalletConnectRequest true "地址与签名"
// @Success 200 {object} types.APIResponse{data=types.WalletConnectResponse}
// @Failure 400 {object} types.APIResponse{error=types.APIError}
// @Failure 401 {object} types.APIResponse{error=types.APIError}
// @Failure 500 {object} types.APIResponse{error=types.APIError}
// @Router /api/v1/auth/connect [post]
func (h *Handler) WalletConnect(c *gin.Context) {
	var req types.WalletConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.APIResponse{
			Success: false,
			Error: &types.APIError{
				Code:    "INVALID_REQUEST",
				Message: "Invalid request body",
				Details: err.Error(),
			},
		})
		return
	}

	resp, err := h.authService.WalletConnect(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, authService.ErrInvalidAddress):
			c.JSON(http.StatusBadRequest, types.APIResponse{
				Success: false,
				Error:   &types.APIError{Code: "INVALID_ADDRESS", Message: "Invalid wallet address"},
			})
		case errors.Is(err, authService.ErrInvalidSignature), errors.Is(err, authService.ErrAccountNotFound):
			c.JSON(http.StatusUnauthorized, types.APIResponse{
				Success: false,
				Error:   &types.APIError{Code: "INVALID_SIGNATURE", Message: "Signature verification failed"},
			})
		default:
			logger.Error("WalletConnect failed", err, "wallet_address", req.WalletAddress)
			c.JSON(http.StatusInternalServerError, types.APIResponse{
				Success: false,
				Error:   &types.APIError{Code: "INTERNAL_ERROR", Message: "Failed to authenticate"},
			})
		}
		return
	}

	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: resp})
}

// RefreshToken 刷新token
// @Summary 刷新token
// @Description 用refresh token换取新的token对
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body types.RefreshTokenRequest true "refresh token"
// @Success 200 {object} types.APIResponse{data=types.WalletConnectResponse}
// @Failure 401 {object} types.APIResponse{error=types.APIError}
// @Failure 500 {object} types.APIResponse{error=types.APIError}
// @Router /api/v1/auth/refresh [post]
func (h *Handler) RefreshToken(c *gin.Context) {
	var req types.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.APIResponse{
			Success: false,
			Error: &types.APIError{
				Code:    "INVALID_REQUEST",
				Message: "Invalid request body",
				Details: err.Error(),
			},
		})
		return
	}

	resp, err := h.authService.RefreshToken(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, authService.ErrInvalidToken) || errors.Is(err, authService.ErrAccountNotFound) {
			c.JSON(http.StatusUnauthorized, types.APIResponse{
				Success: false,
				Error:   &types.APIError{Code: "INVALID_TOKEN", Message: "Invalid or expired refresh token"},
			})
			return
		}
		logger.Error("RefreshToken failed", err)
		c.JSON(http.StatusInternalServerError, types.APIResponse{
			Success: false,
			Error:   &types.APIError{Code: "INTERNAL_ERROR", Message: "Failed to refresh token"},
		})
		return
	}

	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: resp})
}
