package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"wms-console/internal/pkg/logger"
)

// Logger 请求日志，按状态码区分级别
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		operator := c.GetString("username")
		if operator == "" {
			operator = "-"
		}

		switch {
		case status >= 500:
			logger.Errorf("[%s] %s %s %s %d %v - Internal Server Error %s",
				c.ClientIP(), operator, c.Request.Method, c.Request.RequestURI, status, latency, c.Errors.ByType(gin.ErrorTypeAny).String())
		case status >= 400:
			logger.Warnf("[%s] %s %s %s %d %v - Client Error",
				c.ClientIP(), operator, c.Request.Method, c.Request.RequestURI, status, latency)
		default:
			logger.Infof("[%s] %s %s %s %d %v \"%s\"",
				c.ClientIP(), operator, c.Request.Method, c.Request.RequestURI, status, latency, c.Request.UserAgent())
		}
	}
}
