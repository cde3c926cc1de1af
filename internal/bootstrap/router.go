package bootstrap

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	httpHandler "todo-app/internal/handler/http"
	gormpersistence "todo-app/internal/infra/persistence/gorm"
	redisstate "todo-app/internal/infra/state/redis"
	"todo-app/internal/middleware"
	"todo-app/internal/service"
)

// NewRouter 组装仓库、服务、处理器和中间件，返回注册好全部路由的 Gin Engine。
// db 需要已经完成迁移。
func NewRouter(cfg *Config, log *logrus.Logger, db *gorm.DB, redisClient *redis.Client) (*gin.Engine, error) {
	if db == nil || redisClient == nil {
		return nil, fmt.Errorf("database and redis client are required")
	}

	// 1. Repositories
	userRepo := gormpersistence.NewGormUserRepository(db)
	taskRepo := gormpersistence.NewGormTaskRepository(db)
	sessionStore := redisstate.NewRedisSessionStore(redisClient, cfg.KeyPrefix)

	// 2. Services
	authService := service.NewAuthService(userRepo, cfg.BcryptCost)
	taskService := service.NewTaskService(taskRepo)

	// 3. Session
	codec, err := middleware.NewSessionCodec(cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create session codec: %w", err)
	}
	sessions := middleware.NewSessionManager(sessionStore, codec, cfg.SessionTTL, cfg.IsProduction())

	// 4. Handlers
	authHandler := httpHandler.NewAuthHandler(authService)
	taskHandler := httpHandler.NewTaskHandler(taskService)

	// 5. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(registry)

	// 6. Gin Engine
	templates, err := httpHandler.LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	router := gin.New()
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, fmt.Errorf("failed to configure trusted proxies: %w", err)
	}
	router.SetHTMLTemplate(templates)
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(log))
	router.Use(metrics.Middleware())

	router.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "pong"}) })
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.StaticFS("/static", httpHandler.StaticFiles())

	limit := func(name string) gin.HandlerFunc {
		return middleware.RateLimit(redisClient, cfg.KeyPrefix+name+":", cfg.RateLimitMax, cfg.RateLimitWindow)
	}

	// --- 页面路由 ---
	pages := router.Group("/", sessions.Middleware())
	{
		pages.GET("/login", authHandler.LoginPage)
		pages.POST("/login", limit("login"), authHandler.Login)
		pages.GET("/register", authHandler.RegisterPage)
		pages.POST("/register", limit("register"), authHandler.Register)
		pages.GET("/logout", authHandler.Logout)
	}

	protected := pages.Group("/", middleware.RequireLogin(middleware.Gate{LoginPath: "/login"}))
	{
		protected.GET("/", taskHandler.Index)
		protected.POST("/", taskHandler.AddTask)
		protected.POST("/done/:id", taskHandler.MarkDone)
		protected.POST("/delete/:id", taskHandler.Delete)
		protected.POST("/delete_completed/:id", taskHandler.DeleteCompleted)
		protected.GET("/completed_tasks", taskHandler.CompletedTasks)
		protected.POST("/tasks/:id/edit", taskHandler.EditTask)
		protected.POST("/update_priority/:id", taskHandler.UpdatePriority)
		protected.GET("/change_password", authHandler.ChangePasswordPage)
		protected.POST("/change_password", authHandler.ChangePassword)
	}

	return router, nil
}

// LoggerMiddleware 创建一个 Gin 中间件用于记录请求日志
func LoggerMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next() // 处理请求
		latency := time.Since(startTime)
		statusCode := c.Writer.Status()
		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		entry := log.WithFields(logrus.Fields{
			"status_code": statusCode,
			"latency_ms":  latency.Milliseconds(),
			"client_ip":   c.ClientIP(),
			"method":      c.Request.Method,
			"path":        path,
		})

		switch {
		case errorMessage != "":
			entry.Error(errorMessage)
		case statusCode >= 500:
			entry.Error("Server error")
		case statusCode >= 400:
			entry.Warn("Client error")
		default:
			entry.Info("Request handled")
		}
	}
}
