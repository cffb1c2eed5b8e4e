package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Delerious28/Andrew-webshop2-sub000/config"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/api/admin"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/api/cart"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/api/catalog"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/api/checkout"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/api/faq"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/api/user"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/middleware"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/repository/mysql"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/service"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/storage"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	_ "github.com/go-sql-driver/mysql"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			util.Logger.Error("程序发生严重错误", zap.Any("error", r))
		}
	}()

	// 初始化配置
	config.Init()

	// 初始化日志
	util.InitLogger(config.AppConfig.LogLevel)
	defer util.Logger.Sync()

	util.Logger.Info("应用程序启动")

	// 设置支付平台密钥
	stripe.Key = config.AppConfig.StripeSecretKey

	// 设置数据库连接字符串
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		config.AppConfig.DBUser,
		config.AppConfig.DBPassword,
		config.AppConfig.DBHost,
		config.AppConfig.DBPort,
		config.AppConfig.DBName)

	// 连接数据库
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		util.Logger.Fatal("连接数据库失败", zap.Error(err))
	}
	defer db.Close()

	// 测试数据库连接
	if err = db.Ping(); err != nil {
		util.Logger.Fatal("数据库连接测试失败", zap.Error(err))
	}
	util.Logger.Info("数据库连接成功")

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	util.Logger.Info("数据库连接池配置完成")

	// 注册自定义验证器
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("price_cents", util.ValidatePriceCents)
		v.RegisterValidation("order_status", util.ValidateOrderStatus)
	}

	// 确保上传文件夹存在
	ensureUploadsFolder()

	// 初始化文件存储后端
	fileStorage, err := storage.NewStorage()
	if err != nil {
		util.Logger.Fatal("初始化文件存储失败", zap.Error(err))
	}

	// 初始化会话黑名单存储，Redis 不可用时退回内存实现
	sessionStore := service.NewSessionStore(
		config.AppConfig.RedisAddr,
		config.AppConfig.RedisPassword)

	// 初始化存储库、服务和处理器
	userRepo := mysql.NewUserRepository(db)
	productRepo := mysql.NewProductRepository(db)
	cartRepo := mysql.NewCartRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	faqRepo := mysql.NewFaqRepository(db)

	emailService := service.NewEmailService()
	userService := service.NewUserService(userRepo, emailService, sessionStore)
	catalogService := service.NewCatalogService(productRepo)
	cartService := service.NewCartService(cartRepo, productRepo)
	checkoutService := service.NewCheckoutService(orderRepo, cartRepo, productRepo, userRepo, emailService)
	faqService := service.NewFaqService(faqRepo)
	adminService := service.NewAdminService(userRepo, orderRepo, productRepo)

	// 初始化错误监控
	errorMonitor := middleware.NewErrorMonitor()

	authHandler := user.NewAuthHandler(userService)
	profileHandler := user.NewProfileHandler(userService)
	catalogHandler := catalog.NewCatalogHandler(catalogService, fileStorage)
	cartHandler := cart.NewCartHandler(cartService)
	checkoutHandler := checkout.NewCheckoutHandler(checkoutService)
	faqHandler := faq.NewFaqHandler(faqService)
	adminHandler := admin.NewAdminHandler(adminService, errorMonitor)

	// 设置 Gin 路由
	r := gin.Default()

	// 添加中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.ErrorMonitorMiddleware(errorMonitor))

	// 配置 CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{config.AppConfig.FrontendURL}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length",
		"Content-Type",
		"Access-Control-Allow-Origin",
	}

	r.Use(cors.New(corsConfig))

	// 静态文件的CORS处理
	r.Use(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/uploads/") {
			c.Header("Access-Control-Allow-Origin", config.AppConfig.FrontendURL)
			c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type")

			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(200)
				return
			}
		}
		c.Next()
	})

	// 配置静态文件服务
	r.Static("/uploads", config.AppConfig.LocalStoragePath)

	// 定义 API 路由
	api := r.Group("/api")
	{
		// 认证相关路由
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)
		api.POST("/verify-email", authHandler.VerifyEmail)
		api.POST("/auto-login", authHandler.AutoLogin)
		api.POST("/request-password-reset", authHandler.RequestPasswordReset)
		api.POST("/reset-password", authHandler.ResetPassword)

		// 商品目录（公开）
		api.GET("/products", catalogHandler.ListProducts)
		api.GET("/products/:id", catalogHandler.GetProduct)

		// FAQ（公开）
		api.GET("/faq", faqHandler.ListEntries)

		// 支付回调，签名校验在处理器内完成
		api.POST("/webhooks/stripe", checkoutHandler.Webhook)

		// 需要认证的路由
		authorized := api.Group("/")
		authorized.Use(middleware.AuthMiddleware(userService))
		{
			authorized.GET("/profile", profileHandler.GetProfile)
			authorized.PUT("/profile", profileHandler.UpdateProfile)
			authorized.POST("/logout", authHandler.Logout)
			authorized.POST("/refresh-token", authHandler.RefreshToken)

			authorized.GET("/address", profileHandler.GetCurrentAddress)
			authorized.PUT("/address", profileHandler.SaveAddress)

			authorized.GET("/cart", cartHandler.GetCart)
			authorized.POST("/cart/items", cartHandler.AddItem)
			authorized.PUT("/cart/items/:product_id", cartHandler.UpdateQuantity)
			authorized.DELETE("/cart/items/:product_id", cartHandler.RemoveItem)
			authorized.POST("/cart/merge", cartHandler.Merge)

			authorized.POST("/checkout", checkoutHandler.CreateSession)
			authorized.GET("/orders", checkoutHandler.ListOrders)
			authorized.GET("/orders/:id", checkoutHandler.GetOrder)
		}

		// 管理员路由组
		adminRoutes := api.Group("/admin")
		adminRoutes.Use(middleware.AuthMiddleware(userService), middleware.AdminMiddleware(userService))
		{
			// 商品管理
			productAdmin := adminRoutes.Group("/products")
			{
				productAdmin.POST("", catalogHandler.CreateProduct)
				productAdmin.PUT("/:id", catalogHandler.UpdateProduct)
				productAdmin.DELETE("/:id", catalogHandler.DeleteProduct)
				productAdmin.POST("/:id/images", catalogHandler.UploadProductImage)
				productAdmin.DELETE("/:id/images/:image_id", catalogHandler.DeleteProductImage)
			}

			// 用户管理
			userAdmin := adminRoutes.Group("/users")
			{
				userAdmin.GET("", adminHandler.GetUsers)
				userAdmin.GET("/:id", adminHandler.GetUser)
				userAdmin.PUT("/:id/role", adminHandler.UpdateUserRole)
				userAdmin.DELETE("/:id", adminHandler.DeleteUser)
			}

			// 订单管理
			orderAdmin := adminRoutes.Group("/orders")
			{
				orderAdmin.GET("", adminHandler.GetOrders)
				orderAdmin.GET("/:id", adminHandler.GetOrder)
				orderAdmin.PATCH("/:id/status", adminHandler.UpdateOrderStatus)
			}

			// FAQ管理
			faqAdmin := adminRoutes.Group("/faq")
			{
				faqAdmin.GET("", faqHandler.ListAllEntries)
				faqAdmin.POST("", faqHandler.CreateEntry)
				faqAdmin.PUT("/:id", faqHandler.UpdateEntry)
				faqAdmin.DELETE("/:id", faqHandler.DeleteEntry)
				faqAdmin.POST("/:id/move", faqHandler.MoveEntry)
			}

			// 系统管理
			adminRoutes.GET("/stats", adminHandler.GetSystemStats)
			adminRoutes.GET("/stats/errors", adminHandler.GetErrorStats)
		}
	}

	// 创建一个带有超时的 http.Server
	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	// 在一个新的 goroutine 中启动服务器
	go func() {
		util.Logger.Info("服务器正在启动，监听端口 :8080")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Logger.Fatal("启动服务器失败", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	util.Logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		util.Logger.Fatal("服务器强制关闭", zap.Error(err))
	}

	util.Logger.Info("服务器已优雅关闭")
}

// 确保上传文件夹存在
func ensureUploadsFolder() {
	uploadsPath := config.AppConfig.LocalStoragePath
	if err := os.MkdirAll(uploadsPath, 0755); err != nil {
		util.Logger.Fatal("创建上传文件夹失败", zap.Error(err), zap.String("path", uploadsPath))
	}
	util.Logger.Info("上传文件夹已创建或已存在", zap.String("path", uploadsPath))
}
