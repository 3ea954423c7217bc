package subscription

import (
	"net/http"
	"sync"
	"time"

	authService "walletgate-backend/internal/service/auth"
	"walletgate-backend/internal/service/relay"
	"walletgate-backend/internal/types"
	"walletgate-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

// Handler 订阅推送处理器
// 把Relay的回调桥接为WebSocket推送；每个连接持有一个独立的Relay订阅，
// 同一订阅字段下多客户端的扇出由这里负责，Relay不感知单个客户端
type Handler struct {
	relay       *relay.Relay
	authService authService.Service
	upgrader    websocket.Upgrader
}

// NewHandler 创建订阅处理器
func NewHandler(r *relay.Relay, authService authService.Service) *Handler {
	return &Handler{
		relay:       r,
		authService: authService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 浏览器客户端来自任意前端域名
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/subscriptions/address-updated", h.HandleAddressUpdated)
}

// HandleAddressUpdated 地址活动订阅端点
// @Summary 地址活动WebSocket订阅
// @Description 升级为WebSocket连接后持续推送地址活动事件，token通过query参数传递
// @Tags 订阅
// @Param token query string true "access token"
// @Success 101 "协议升级"
// @Failure 401 {object} types.APIResponse{error=types.APIError}
// @Router /api/v1/subscriptions/address-updated [get]
func (h *Handler) HandleAddressUpdated(c *gin.Context) {
	// WebSocket握手不带自定义header，token走query参数
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, types.APIResponse{
			Success: false,
			Error:   &types.APIError{Code: "UNAUTHORIZED", Message: "Missing token"},
		})
		return
	}

	claims, err := h.authService.VerifyToken(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, types.APIResponse{
			Success: false,
			Error:   &types.APIError{Code: "UNAUTHORIZED", Message: "Invalid or expired token"},
		})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", err, "wallet_address", claims.WalletAddress)
		return
	}

	client := &wsClient{conn: conn}

	subscriptionID, err := h.relay.Subscribe(relay.TriggerAddressUpdated, client.push)
	if err != nil {
		logger.Error("Failed to subscribe for websocket client", err, "wallet_address", claims.WalletAddress)
		client.close()
		return
	}

	logger.Info("WebSocket subscriber connected", "wallet_address", claims.WalletAddress, "subscription_id", subscriptionID)

	// 读循环只用于感知断开，客户端消息全部丢弃
	go h.readLoop(client, subscriptionID, claims.WalletAddress)
	go client.pingLoop()
}

// readLoop 等待连接关闭并清理订阅
func (h *Handler) readLoop(client *wsClient, subscriptionID int64, walletAddress string) {
	defer func() {
		h.relay.Unsubscribe(subscriptionID)
		client.close()
		logger.Info("WebSocket subscriber disconnected", "wallet_address", walletAddress, "subscription_id", subscriptionID)
	}()

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// wsClient 单个WebSocket连接
type wsClient struct {
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
}

// push Relay回调：把事件写为一帧JSON
func (c *wsClient) push(event *types.NormalizedEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(event); err != nil {
		logger.Warn("Failed to push event to websocket client", "error", err)
	}
}

// pingLoop 定期发送ping保活
func (c *wsClient) pingLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		err := c.conn.WriteMessage(websocket.PingMessage, nil)
		c.mu.Unlock()
		if err != nil {
			return
		}
	}
}

// close 关闭连接
func (c *wsClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		c.conn.Close()
	}
}
