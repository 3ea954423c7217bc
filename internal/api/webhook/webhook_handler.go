package webhook

import (
	"io"
	"net/http"

	webhookService "walletgate-backend/internal/service/webhook"
	"walletgate-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handler Webhook HTTP 处理器
type Handler struct {
	processor       *webhookService.Processor
	signatureHeader string
}

// NewHandler 创建 Webhook Handler
func NewHandler(processor *webhookService.Processor, signatureHeader string) *Handler {
	return &Handler{
		processor:       processor,
		signatureHeader: signatureHeader,
	}
}

// RegisterRoutes 注册路由
// 不挂认证中间件：调用方身份由HMAC签名证明
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/webhooks/address-activity", h.HandleAddressActivity)
}

// HandleAddressActivity 处理地址活动 Webhook 请求
// @Summary 地址活动 Webhook 接收端点
// @Description 接收地址监控服务推送的链上活动，HMAC-SHA256验签后中继给订阅端
// @Tags Webhook
// @Accept json
// @Success 200 "接收成功（含无活动可处理的情况）"
// @Failure 500 "验签失败、请求体非法或中继失败（不区分原因）"
// @Router /api/v1/webhooks/address-activity [post]
func (h *Handler) HandleAddressActivity(c *gin.Context) {
	// 验签必须基于线上原始字节，任何body解析都要放在读取之后
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		logger.Error("Failed to read webhook body", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	signature := c.GetHeader(h.signatureHeader)

	// 所有失败统一折叠为空body的500，不向未授信调用方泄露验签细节
	if err := h.processor.Process(c.Request.Context(), rawBody, signature); err != nil {
		logger.Error("Webhook processing failed", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Status(http.StatusOK)
}
