package router

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"wms-console/internal/api"
	"wms-console/internal/api/admin"
	"wms-console/internal/middleware"
)

// SetupRoutes 配置所有路由
func SetupRoutes(r *gin.Engine, adminFS http.FileSystem) {
	// 健康检查接口（不需要任何中间件）
	r.GET("/api/v1/health", api.SimpleHealthCheck)

	if adminFS != nil {
		r.StaticFS("/static/admin", adminFS)
		setupSPARoutes(r, adminFS)
	}

	setupAPIRoutes(r)
}

func setupAPIRoutes(r *gin.Engine) {
	apiGroup := r.Group("/api/v1")
	apiGroup.Use(middleware.Cors())

	auth := apiGroup.Group("/auth")
	{
		auth.POST("/login", api.Login)
		auth.POST("/logout", middleware.Session(), api.Logout)
	}

	authorized := apiGroup.Group("/admin")
	authorized.Use(middleware.Session())
	{
		authorized.GET("/racks", admin.GetRacks)

		bins := authorized.Group("/bins")
		{
			bins.GET("", admin.GetBins)
			bins.DELETE("/workspace", admin.ResetWorkspace)

			// 勾选
			bins.POST("/:id/toggle", admin.ToggleBin)
			bins.POST("/select-all", admin.SelectAllBins)
			bins.GET("/selection", admin.GetSelection)

			// 批量操作
			bins.POST("/batch-delete", admin.BatchDeleteBins)
			bins.POST("/qrcodes/load", admin.LoadQRCodes)
			bins.GET("/qrcodes/print", admin.PrintQRCodes)
			bins.GET("/print-jobs", admin.GetPrintJobs)

			// 单个库位
			bins.GET("/:id/qrcode", admin.ViewBinQRCode)
			bins.DELETE("/:id", admin.DeleteBin)
			bins.POST("/:id/edit", admin.BeginEditBin)

			// 行内编辑
			bins.POST("/draft", admin.BeginCreateBin)
			bins.PUT("/draft", admin.UpdateDraft)
			bins.POST("/draft/save", admin.SaveDraft)
			bins.DELETE("/draft", admin.CancelDraft)
		}

		system := authorized.Group("/system")
		{
			system.GET("/login-logs", admin.GetLoginLogs)
		}
	}
}

// setupSPARoutes 设置管理端页面路由
func setupSPARoutes(r *gin.Engine, adminFS http.FileSystem) {
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/admin")
	})
	r.GET("/admin", serveAdminIndex(adminFS))
	r.GET("/admin/*path", serveAdminPath(adminFS))

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{
				"code": 404,
				"msg":  "接口不存在",
			})
			return
		}
		c.Redirect(http.StatusFound, "/admin")
	})
}

// serveAdminIndex 提供管理端首页
func serveAdminIndex(adminFS http.FileSystem) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "text/html; charset=utf-8")
		file, err := adminFS.Open("/index.html")
		if err != nil {
			c.String(http.StatusNotFound, "管理端页面不存在")
			return
		}
		defer file.Close()

		http.ServeContent(c.Writer, c.Request, "index.html", time.Now(), file.(io.ReadSeeker))
	}
}

// serveAdminPath 静态资源存在时直接返回，否则回退到首页交给前端路由
func serveAdminPath(adminFS http.FileSystem) gin.HandlerFunc {
	fileServer := http.FileServer(adminFS)
	index := serveAdminIndex(adminFS)
	return func(c *gin.Context) {
		path := strings.TrimPrefix(c.Param("path"), "/")
		if path == "" || path == "index.html" {
			index(c)
			return
		}

		f, err := adminFS.Open("/" + path)
		if err == nil {
			f.Close()
			c.Request.URL.Path = "/" + path
			fileServer.ServeHTTP(c.Writer, c.Request)
			return
		}
		index(c)
	}
}
