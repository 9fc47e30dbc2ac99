package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wms-console/internal/service"
)

// SimpleHealthCheck 简单健康检查
// 用于 Docker 健康检查和负载均衡器
func SimpleHealthCheck(c *gin.Context) {
	sessions := 0
	if service.Sessions != nil {
		sessions = service.Sessions.Len()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": sessions,
		"audit":    service.Audits.Enabled(),
	})
}
