package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"walletgate-backend/docs"
	accountHandler "walletgate-backend/internal/api/account"
	authHandler "walletgate-backend/internal/api/auth"
	notificationHandler "walletgate-backend/internal/api/notification"
	subscriptionHandler "walletgate-backend/internal/api/subscription"
	walletHandler "walletgate-backend/internal/api/wallet"
	webhookHandler "walletgate-backend/internal/api/webhook"

	"walletgate-backend/internal/config"
	accountRepo "walletgate-backend/internal/repository/account"
	activityRepo "walletgate-backend/internal/repository/activity"
	notificationRepo "walletgate-backend/internal/repository/notification"
	accountService "walletgate-backend/internal/service/account"
	authService "walletgate-backend/internal/service/auth"
	notificationService "walletgate-backend/internal/service/notification"
	relayService "walletgate-backend/internal/service/relay"
	walletService "walletgate-backend/internal/service/wallet"
	webhookService "walletgate-backend/internal/service/webhook"

	"walletgate-backend/pkg/database"
	"walletgate-backend/pkg/kms"
	"walletgate-backend/pkg/logger"
	"walletgate-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title WalletGate Backend API
// @version 1.0
// @description WalletGate Backend API
// @host localhost:8080
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(logger.DefaultConfig())
	logger.Info("Starting WalletGate Backend v1.0.0")

	// 创建根context和WaitGroup用于协调关闭
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	// 设置信号处理
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// 1. 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config: ", err)
		os.Exit(1)
	}

	// 2. 连接数据库
	db, err := database.NewPostgresConnection(&cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database: ", err)
		os.Exit(1)
	}

	// 设置logger数据库写入器，使错误日志可以写入数据库
	logger.SetDB(db)

	// 3. 迁移表结构和索引
	if err := database.AutoMigrate(db); err != nil {
		logger.Error("Failed to migrate database: ", err)
		os.Exit(1)
	}
	if err := database.CreateIndexes(db); err != nil {
		logger.Error("Failed to create indexes: ", err)
		os.Exit(1)
	}

	// 4. 连接Redis（Relay传输层）
	redisClient, err := database.NewRedisConnection(&cfg.Redis)
	if err != nil {
		logger.Error("Failed to connect to Redis: ", err)
		os.Exit(1)
	}

	// 5. 初始化仓库层
	accountRepository := accountRepo.NewRepository(db)
	activityRepository := activityRepo.NewRepository(db)
	notificationRepository := notificationRepo.NewRepository(db)

	// 6. 初始化JWT管理器
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// 7. 初始化Relay（显式实例，按引用传给所有消费方）
	relay := relayService.NewRelay(relayService.NewRedisTransport(redisClient), &cfg.Relay)

	// 8. 初始化服务层
	authSvc := authService.NewService(accountRepository, jwtManager)
	accountSvc := accountService.NewService(accountRepository, activityRepository)
	notificationSvc := notificationService.NewService(notificationRepository, relay)

	kmsClient := kms.NewClient(cfg.KMS.BaseURL, cfg.KMS.APIKey, cfg.KMS.Timeout)
	walletSvc := walletService.NewService(kmsClient)

	// Webhook处理链：验签 -> 规范化 -> 发布 -> 落库
	verifier := webhookService.NewSignatureVerifier(cfg.Webhook.SigningKey)
	webhookProcessor := webhookService.NewProcessor(verifier, relay, activityRepository)

	// 9. 设置Gin和路由
	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()

	// 10. 添加CORS中间件
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 11. 创建API路由组并注册处理器
	v1 := router.Group("/api/v1")
	{
		authHdl := authHandler.NewHandler(authSvc)
		authHdl.RegisterRoutes(v1)

		accountHdl := accountHandler.NewHandler(accountSvc, authSvc)
		accountHdl.RegisterRoutes(v1)

		notificationHdl := notificationHandler.NewHandler(notificationSvc, authSvc)
		notificationHdl.RegisterRoutes(v1)

		walletHdl := walletHandler.NewHandler(walletSvc, authSvc)
		walletHdl.RegisterRoutes(v1)

		webhookHdl := webhookHandler.NewHandler(webhookProcessor, cfg.Webhook.SignatureHeader)
		webhookHdl.RegisterRoutes(v1)

		subscriptionHdl := subscriptionHandler.NewHandler(relay, authSvc)
		subscriptionHdl.RegisterRoutes(v1)
	}

	// 12. Swagger API文档端点
	docs.SwaggerInfo.Host = "localhost:" + cfg.Server.Port
	docs.SwaggerInfo.Title = "WalletGate Backend API v1.0"
	docs.SwaggerInfo.Description = "WalletGate Backend API"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	// 健康检查端点
	router.GET("/api/v1/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 13. 启动通知服务（在Relay上注册地址活动订阅）
	if cfg.Notification.Enabled {
		if err := notificationSvc.Start(); err != nil {
			logger.Error("Failed to start notification service", err)
		} else {
			logger.Info("Notification service started successfully")
		}
	}

	// 14. 启动HTTP服务器
	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("Starting server on ", "address", addr)
		logger.Info("Swagger documentation available at: http://localhost:" + cfg.Server.Port + "/swagger/index.html")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error: ", err)
			cancel() // 通知其他组件关闭
		}
	}()

	// 15. 等待关闭信号
	select {
	case <-sigCh:
		logger.Info("Received shutdown signal, starting graceful shutdown...")
	case <-ctx.Done():
		logger.Info("Context cancelled, starting shutdown...")
	}

	// 16. 开始优雅关闭（逆序关闭）

	// Step 1: 停止HTTP服务器（最后启动的最先关闭）
	logger.Info("Stopping HTTP server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error: ", err)
	} else {
		logger.Info("HTTP server stopped")
	}
	shutdownCancel()

	// Step 2: 取消context，通知所有组件停止
	cancel()

	// Step 3: 停止通知服务并关闭Relay（注销全部订阅，停掉消费循环）
	logger.Info("Stopping notification service...")
	notificationSvc.Stop()
	logger.Info("Closing relay...")
	relay.Close()

	// Step 4: 关闭Redis连接
	if err := redisClient.Close(); err != nil {
		logger.Error("Failed to close redis client", err)
	}

	// Step 5: 等待所有goroutine结束
	logger.Info("Waiting for all goroutines to finish...")
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("All services stopped gracefully")
	case <-time.After(15 * time.Second):
		logger.Error("Timeout waiting for services to stop, forcing exit", nil)
	}

	logger.Sync()
}
