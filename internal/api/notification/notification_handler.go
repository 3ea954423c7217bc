package notification

import (
	"errors"
	"net/http"

	"walletgate-backend/internal/middleware"
	authService "walletgate-backend/internal/service/auth"
	notificationService "walletgate-backend/internal/service/notification"
	"walletgate-backend/internal/types"
	"walletgate-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handler 通知渠道处理器
type Handler struct {
	notificationService notificationService.Service
	authService         authService.Service
}

// NewHandler 创建通知渠道处理器
func NewHandler(notificationService notificationService.Service, authService authService.Service) *Handler {
	return &Handler{
		notificationService: notificationService,
		authService:         authService,
	}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/notifications")
	group.Use(middleware.AuthMiddleware(h.authService)) // 使用JWT认证中间件
	{
		group.GET("/channels", h.ListChannels)
		group.POST("/channels", h.CreateChannel)
		group.PUT("/channels", h.UpdateChannel)
		group.DELETE("/channels", h.DeleteChannel)
	}
}

// ListChannels 查询通知渠道
// @Summary 查询通知渠道
// @Description 查询当前账户配置的全部通知渠道
// @Tags 通知
// @Security BearerAuth
// @Produce json
// @Success 200 {object} types.APIResponse{data=types.NotificationChannelListResponse}
// @Failure 401 {object} types.APIResponse{error=types.APIError}
// @Failure 500 {object} types.APIResponse{error=types.APIError}
// @Router /api/v1/notifications/channels [get]
func (h *Handler) ListChannels(c *gin.Context) {
	walletAddress, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, types.APIResponse{
			Success: false,
			Error:   &types.APIError{Code: "UNAUTHORIZED", Message: "User not authenticated"},
		})
		return
	}

	resp, err := h.notificationService.ListChannels(c.Request.Context(), walletAddress)
	if err != nil {
		logger.Error("ListChannels failed", err, "wallet_address", walletAddress)
		c.JSON(http.StatusInternalServerError, types.APIResponse{
			Success: false,
			Error:   &types.APIError{Code: "QUERY_FAILED", Message: "Failed to query channels"},
		})
		return
	}

	c.JSON(http.StatusOK, types.APIResponse{Success: true, Data: resp})
}

// CreateChannel 创建通知渠道
// @Summary 创建通知渠道
// @Description 为当前账户添加slack或discord通知渠道
// @Tags 通知
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body types.CreateNotificationRequest true "渠道配置"
// @Success 200 {object} types.APIResponse
// @Failure 400 {object} types.APIResponse{error=types.APIError}
// @Failure 401 {object} types.APIResponse{error=types.APIError}
// @Failure 500 {object} types.APIResponse{error=types.APIError}
// @Router /api/v1/notifications/channels [post]
func (h *Handler) CreateChannel(c *gin.Context) {
	walletAddress, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, types.APIResponse{
			Success: false,
			Error:   &types.APIError{Code: "UNAUTHORIZED", Message: "User not authenticated"},
		})
		return
	}

	var req types.CreateNotificationRequest
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

	if err := h.notificationService.CreateChannel(c.Request.Context(), walletAddress, &req); err != nil {
		if errors.Is(err, notificationService.ErrChannelExists) || errors.Is(err, notificationService.ErrInvalidChannel) {
			c.JSON(http.StatusBadRequest, types.APIResponse{
				Success: false,
				Error:   &types.APIError{Code: "INVALID_CHANNEL", Message: err.Error()},
			})
			return
		}
		logger.Error("CreateChannel failed", err, "wallet_address", walletAddress)
		c.JSON(http.StatusInternalServerError, types.APIResponse{
			Success: false,
			Error:   &types.APIError{Code: "CREATE_FAILED", Message: "Failed to create channel"},
		})
		return
	}

	c.JSON(http.StatusOK, types.APIResponse{Success: true})
}

// UpdateChannel 更新通知渠道
// @Summary 更新通知渠道
// @Description 更新当前账户的通知渠道配置，不需要更新的字段可以不填
// @Tags 通知
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body types.UpdateNotificationRequest true "待更新字段"
// @Success 200 {object} types.APIResponse
// @Failure 400 {object} types.APIResponse{error=types.APIError}
// @Failure 401 {object} types.APIResponse{error=types.APIError}
// @Failure 404 {object} types.APIResponse{error=types.APIError}
// @Failure 500 {object} types.APIResponse{error=types.APIError}
// @Router /api/v1/notifications/channels [put]
func (h *Handler) UpdateChannel(c *gin.Context) {
	walletAddress, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, types.APIResponse{
			Success: false,
			Error:   &types.APIError{Code: "UNAUTHORIZED", Message: "User not authenticated"},
		})
		return
	}

	var req types.UpdateNotificationRequest
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

	if err := h.notificationService.UpdateChannel(c.Request.Context(), walletAddress, &req); err != nil {
		if errors.Is(err, notificationService.ErrChannelNotFound) {
			c.JSON(http.StatusNotFound, types.APIResponse{
				Success: false,
				Error:   &types.APIError{Code: "NOT_FOUND", Message: "Channel not found"},
			})
			return
		}
		logger.Error("UpdateChannel failed", err, "wallet_address", walletAddress)
		c.JSON(http.StatusInternalServerError, types.APIResponse{
			Success: false,
			Error:   &types.APIError{Code: "UPDATE_FAILED", Message: "Failed to update channel"},
		})
		return
	}

	c.JSON(http.StatusOK, types.APIResponse{Success: true})
}

// DeleteChannel 删除通知渠道
// @Summary 删除通知渠道
// @Description 删除当前账户的指定通知渠道
// @Tags 通知
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body types.DeleteNotificationRequest true "渠道名称"
// @Success 200 {object} types.APIResponse
// @Failure 401 {object} types.APIResponse{error=types.APIError}
// @Failure 404 {object} types.APIResponse{error=types.APIError}
// @Failure 500 {object} types.APIResponse{error=types.APIError}
// @Router /api/v1/notifications/channels [delete]
func (h *Handler) DeleteChannel(c *gin.Context) {
	walletAddress, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, types.APIResponse{
			Success: false,
			Error:   &types.APIError{Code: "UNAUTHORIZED", Message: "User not authenticated"},
		})
		return
	}

	var req types.DeleteNotificationRequest
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

	if err := h.notificationService.DeleteChannel(c.Request.Context(), walletAddress, &req); err != nil {
		if errors.Is(err, notificationService.ErrChannelNotFound) {
			c.JSON(http.StatusNotFound, types.APIResponse{
				Success: false,
				Error:   &types.APIError{Code: "NOT_FOUND", Message: "Channel not found"},
			})
			return
		}
		logger.Error("DeleteChannel failed", err, "wallet_address", walletAddress)
		c.JSON(http.StatusInternalServerError, types.APIResponse{
			Success: false,
			Error:   &types.APIError{Code: "DELETE_FAILED", Message: "Failed to delete channel"},
		})
		return
	}

	c.JSON(http.StatusOK, types.APIResponse{Success: true})
}
