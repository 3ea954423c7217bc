package account

import (
	"errors"
	"net/http"
	"strconv"

	"walletgate-backend/internal/middleware"
	accountService "walletgate-backend/internal/service/account"
	authService "walletgate-backend/internal/service/auth"
	"walletgate-backend/internal/types"
	"walletgate-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handler 账户处理器
type Handler struct {
	accountService accountService.Service
	authService    authService.Service
}

// NewHandler 创建账户处理器
func NewHandler(accountService accountService.Service, authService authService.Service) *Handler {
	return &Handler{
		accountService: accountService,
		authService:    authService,
	}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	accountGroup := router.Group("/account")
	accountGroup.Use(middleware.AuthMiddleware(h.authService)) // 使用JWT认证中间件
	{
		// 获取账户资料
		accountGroup.GET("/profile", h.GetProfile)
		// 更新账户资料
		accountGroup.PUT("/profile", h.UpdateProfile)
		// 查询账户相关地址活动
		accountGroup.GET("/activities", h.GetActivities)
	}
}

// GetProfile 获取账户资料
// @Summary 获取账户资料
// @Description 获取当前登录账户的资料
// @Tags 账户
// @Security BearerAuth
// @Produce json
// @Success 200 {object} types.APIResponse{data=types.AccountProfile}
// @Failure 401 {object} types.APIResponse{error=types.APIError}
// @Failure 500 {object} types.APIResponse{error=types.APIError}
// @Router /api/v1/account/profile [get]
func (h *Handler) GetProfile(c *gin.Context) {
	walletAddress, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, types.APIResponse{
			Success: false,
			Error:   &types.APIError{Code: "UNAUTHORIZED", Message: "User not authenticated"},
		})
		return
	}

	profile, err := h.accountService.GetProfile(c.Request.Context(), walletAddress)
	if err != nil {
		if errors.Is(err, accountService.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, types.APIResponse{
				Success: false,
				Error:   &types.APIError{Code: "NOT_FOUND", Message: "Account not found"},
			})
			return
		}
		logger.Error("GetProfile failed", err, "wallet_address", walletAddress)
		c.JSON(http.StatusInternalServerError, types.APIResponse{
			Success: false,
			Error:   &types.APIError{Code: "QUERY_FAILED", Message: "Failed to query profile"},
		})
		return
	}

	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: profile})
}

// UpdateProfile 更新账户资料
// @Summary 更新账户资料
// @Description 更新当前登录账户的资料，只更新请求中出现的字段
// @Tags 账户
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body types.UpdateProfileRequest true "待更新字段"
// @Success 200 {object} types.APIResponse{data=types.AccountProfile}
// @Failure 400 {object} types.APIResponse{error=types.APIError}
// @Failure 401 {object} types.APIResponse{error=types.APIError}
// @Failure 500 {object} types.APIResponse{error=types.APIError}
// @Router /api/v1/account/profile [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	walletAddress, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, types.APIResponse{
			Success: false,
			Error:   &types.APIError{Code: "UNAUTHORIZED", Message: "User not authenticated"},
		})
		return
	}

	var req types.UpdateProfileRequest
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

	profile, err := h.accountService.UpdateProfile(c.Request.Context(), walletAddress, &req)
	if err != nil {
		logger.Error("UpdateProfile failed", err, "wallet_address", walletAddress)
		c.JSON(http.StatusInternalServerError, types.APIResponse{
			Success: false,
			Error:   &types.APIError{Code: "UPDATE_FAILED", Message: "Failed to update profile"},
		})
		return
	}

	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: profile})
}

// GetActivities 查询账户相关地址活动
// @Summary 查询账户相关地址活动
// @Description 分页查询当前账户地址相关的链上活动记录
// @Tags 账户
// @Security BearerAuth
// @Produce json
// @Param offset query int false "偏移量"
// @Param limit query int false "每页条数（默认20，最大100）"
// @Success 200 {object} types.APIResponse{data=types.ActivityListResponse}
// @Failure 401 {object} types.APIResponse{error=types.APIError}
// @Failure 500 {object} types.APIResponse{error=types.APIError}
// @Router /api/v1/account/activities [get]
func (h *Handler) GetActivities(c *gin.Context) {
	walletAddress, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, types.APIResponse{
			Success: false,
			Error:   &types.APIError{Code: "UNAUTHORIZED", Message: "User not authenticated"},
		})
		return
	}

	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	resp, err := h.accountService.GetActivities(c.Request.Context(), walletAddress, offset, limit)
	if err != nil {
		logger.Error("GetActivities failed", err, "wallet_address", walletAddress)
		c.JSON(http.StatusInternalServerError, types.APIResponse{
			Success: false,
			Error:   &types.APIError{Code: "QUERY_FAILED", Message: "Failed to query activities"},
		})
		return
	}

	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: resp})
}
