package wallet

import (
	"errors"
	"net/http"

	"walletgate-backend/internal/middleware"
	authService "walletgate-backend/internal/service/auth"
	walletService "walletgate-backend/internal/service/wallet"
	"walletgate-backend/internal/types"
	"walletgate-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handler 钱包处理器
type Handler struct {
	walletService walletService.Service
	authService   authService.Service
}

// NewHandler 创建钱包处理器
func NewHandler(walletService walletService.Service, authService authService.Service) *Handler {
	return &Handler{
		walletService: walletService,
		authService:   authService,
	}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	walletGroup := router.Group("/wallet")
	walletGroup.Use(middleware.AuthMiddleware(h.authService)) // 使用JWT认证中间件
	{
		// 创建托管钱包
		walletGroup.POST("/", h.CreateWallet)
		// 估算Gas
		walletGroup.POST("/gas/estimate", h.EstimateGas)
		// 签名并发送交易
		walletGroup.POST("/transactions", h.SendTransaction)
	}
}

// CreateWallet 创建托管钱包
// @Summary 创建托管钱包
// @Description 通过KMS创建托管钱包，私钥不落本服务
// @Tags 钱包
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body types.CreateWalletRequest true "网络"
// @Success 200 {object} types.APIResponse{data=types.CreateWalletResponse}
// @Failure 400 {object} types.APIResponse{error=types.APIError}
// @Failure 401 {object} types.APIResponse{error=types.APIError}
// @Failure 500 {object} types.APIResponse{error=types.APIError}
// @Router /api/v1/wallet [post]
func (h *Handler) CreateWallet(c *gin.Context) {
	var req types.CreateWalletRequest
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

	resp, err := h.walletService.CreateWallet(c.Request.Context(), &req)
	if err != nil {
		logger.Error("CreateWallet failed", err, "network", req.Network)
		c.JSON(http.StatusInternalServerError, types.APIResponse{
			Success: false,
			Error:   &types.APIError{Code: "KMS_ERROR", Message: "Failed to create wallet"},
		})
		return
	}

	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: resp})
}

// EstimateGas 估算Gas
// @Summary 估算Gas
// @Description 转发至KMS估算交易Gas
// @Tags 钱包
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body types.EstimateGasRequest true "交易参数"
// @Success 200 {object} types.APIResponse{data=types.EstimateGasResponse}
// @Failure 400 {object} types.APIResponse{error=types.APIError}
// @Failure 401 {object} types.APIResponse{error=types.APIError}
// @Failure 500 {object} types.APIResponse{error=types.APIError}
// @Router /api/v1/wallet/gas/estimate [post]
func (h *Handler) EstimateGas(c *gin.Context) {
	var req types.EstimateGasRequest
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

	resp, err := h.walletService.EstimateGas(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, walletService.ErrInvalidAddress) {
			c.JSON(http.StatusBadRequest, types.APIResponse{
				Success: false,
				Error:   &types.APIError{Code: "INVALID_ADDRESS", Message: "Invalid from or to address"},
			})
			return
		}
		logger.Error("EstimateGas failed", err, "from", req.From, "to", req.To)
		c.JSON(http.StatusInternalServerError, types.APIResponse{
			Success: false,
			Error:   &types.APIError{Code: "KMS_ERROR", Message: "Failed to estimate gas"},
		})
		return
	}

	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: resp})
}

// SendTransaction 签名并发送交易
// @Summary 签名并发送交易
// @Description 转发至KMS签名并广播交易
// @Tags 钱包
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body types.SendTransactionRequest true "交易参数"
// @Success 200 {object} types.APIResponse{data=types.SendTransactionResponse}
// @Failure 400 {object} types.APIResponse{error=types.APIError}
// @Failure 401 {object} types.APIResponse{error=types.APIError}
// @Failure 500 {object} types.APIResponse{error=types.APIError}
// @Router /api/v1/wallet/transactions [post]
func (h *Handler) SendTransaction(c *gin.Context) {
	var req types.SendTransactionRequest
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

	resp, err := h.walletService.SendTransaction(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, walletService.ErrInvalidAddress) {
			c.JSON(http.StatusBadRequest, types.APIResponse{
				Success: false,
				Error:   &types.APIError{Code: "INVALID_ADDRESS", Message: "Invalid from or to address"},
			})
			return
		}
		logger.Error("SendTransaction failed", err, "from", req.From, "to", req.To)
		c.JSON(http.StatusInternalServerError, types.APIResponse{
			Success: false,
			Error:   &types.APIError{Code: "KMS_ERROR", Message: "Failed to send transaction"},
		})
		return
	}

	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: resp})
}
