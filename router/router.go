package router

import (
	"time"

	"financy/api"
	"financy/config"
	_ "financy/docs"
	"financy/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 路由组
	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录）
		authHandler := api.NewAuthHandler(cfg, db)
		passwordResetHandler := api.NewPasswordResetHandler(cfg, db)
		auth := v1.Group("/auth")
		{
			// 登录/注册按 IP 限流，防止撞库
			limited := auth.Group("")
			limited.Use(middleware.LoginRateLimit(10, time.Minute))
			{
				limited.POST("/register", authHandler.Register)
				limited.POST("/login", authHandler.Login)
			}

			// 密码重置
			auth.POST("/password/request-reset", passwordResetHandler.RequestReset)
			auth.POST("/password/verify-code", passwordResetHandler.VerifyResetCode)
			auth.POST("/password/reset", passwordResetHandler.ResetPassword)
		}

		// 需要 JWT 认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(db))
		{
			// 用户相关
			authorized.GET("/auth/profile", authHandler.GetProfile)
			authorized.PUT("/auth/profile", authHandler.UpdateProfile)
			authorized.PUT("/auth/password", authHandler.ChangePassword)

			// 类别相关
			categoryHandler := api.NewCategoryHandler(db)
			categories := authorized.Group("/categories")
			{
				categories.GET("", categoryHandler.List)
				categories.POST("", categoryHandler.Create)
				categories.GET("/:id", categoryHandler.Get)
				categories.PUT("/:id", categoryHandler.Update)
				categories.DELETE("/:id", categoryHandler.Delete)
			}

			// 交易相关
			transactionHandler := api.NewTransactionHandler(db)
			transactions := authorized.Group("/transactions")
			{
				transactions.GET("", transactionHandler.List)
				transactions.POST("", transactionHandler.Create)
				transactions.GET("/:id", transactionHandler.Get)
				transactions.PUT("/:id", transactionHandler.Update)
				transactions.DELETE("/:id", transactionHandler.Delete)
			}

			// 看板汇总
			summaryHandler := api.NewSummaryHandler(db)
			authorized.GET("/summary", summaryHandler.GetSummary)

			// 导出相关
			exportHandler := api.NewExportHandler(db)
			export := authorized.Group("/export")
			{
				export.GET("/csv", exportHandler.ExportCSV)
				export.GET("/json", exportHandler.ExportJSON)
				export.GET("/excel", exportHandler.ExportExcel)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
