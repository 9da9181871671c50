package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/printstudio/internal/config"
	"github.com/printstudio/internal/content"
	"github.com/printstudio/internal/handler"
	"github.com/printstudio/internal/view"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(cfg config.AppConfig, api *handler.API, gatherer prometheus.Gatherer) (*gin.Engine, error) {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode, MaxAge: 7 * 24 * 3600})
	r.Use(sessions.Sessions("printstudio_session", store))

	tmpl, err := view.Templates()
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)

	// 静态文件服务
	r.Static("/static", "./web/static")
	r.Static(cfg.UploadURLPath, cfg.UploadDir)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	for _, key := range content.PageKeys() {
		r.GET(handler.PagePath(key), api.ShowPage(key))
	}

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.GET("/login", api.ShowLoginPage)
		admin.POST("/login", api.Login)
		admin.GET("/logout", api.Logout)

		// 需要认证的后台路由
		auth := admin.Group("")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("", api.ShowDashboard)

			apiGroup := auth.Group("/api")
			{
				apiGroup.GET("/pages/:page/draft", api.GetDraft)
				apiGroup.POST("/pages/:page/draft", handler.RateLimit("sync", cfg.SyncRateRPS, cfg.SyncRateBurst), api.SyncDraft)
				apiGroup.DELETE("/pages/:page/draft", api.DiscardDraft)
				apiGroup.POST("/pages/:page/publish", api.PublishDraft)

				apiGroup.GET("/uploads", api.ListMedia)
				apiGroup.POST("/uploads", api.UploadMedia)

				apiGroup.POST("/password", api.ChangePassword)
			}
		}
	}

	return r, nil
}
