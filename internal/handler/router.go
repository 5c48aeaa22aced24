package handler

import (
	"ideahub/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// SetupRouter 配置路由
func SetupRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *gin.Engine {
	// 设置 gin 为发布模式（减少日志输出）
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// 注册中间件
	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())

	// 创建处理器
	h := NewHandler(db, rdb, cfg)

	// API 路由组（全部需要登录）
	api := r.Group("/api/v1")
	api.Use(AuthMiddleware(cfg))
	{
		// 代币相关
		token := api.Group("/token")
		{
			token.GET("/balance", h.GetBalance)
			token.GET("/transactions", h.ListTransactions)
			token.POST("/purchase", h.Purchase)
			token.POST("/signup-bonus", h.SignupBonus)
		}

		// 投资相关
		invest := api.Group("/invest")
		{
			invest.POST("/execute", h.Invest)
			invest.GET("/idea", h.GetIdeaInvestments)
			invest.GET("/mine", h.GetMyInvestments)
		}

		// 创意相关
		idea := api.Group("/idea")
		{
			idea.POST("/create", h.CreateIdea)
			idea.GET("/list", h.ListIdeas)
			idea.GET("/detail", h.GetIdea)
			idea.POST("/like", h.LikeIdea)
		}

		// 团队相关
		team := api.Group("/team")
		{
			team.POST("/create", h.CreateTeam)
			team.GET("/list", h.ListTeams)
			team.POST("/join", h.JoinTeam)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
