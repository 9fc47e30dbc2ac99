package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"wms-console/internal/config"
	"wms-console/internal/middleware"
	"wms-console/internal/pkg/logger"
	"wms-console/internal/service"
)

func workspace(c *gin.Context) *service.BinWorkspace {
	return middleware.CurrentSession(c).Workspace
}

// respondError 将业务错误转换为统一响应，后端 token 失效时要求重新登录
func respondError(c *gin.Context, err error) {
	if service.IsSessionExpired(err) || errors.Is(err, service.ErrWorkspaceClosed) {
		if sess := middleware.CurrentSession(c); sess != nil {
			service.Sessions.Close(sess.ID)
		}
		if config.GlobalConfig != nil {
			c.SetCookie(config.GlobalConfig.Session.CookieName, "", -1, "/", "", false, true)
		}
		c.JSON(http.StatusUnauthorized, gin.H{
			"code": 401,
			"msg":  service.ErrSessionExpired.Msg,
		})
		return
	}

	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		c.JSON(svcErr.Code, gin.H{
			"code": svcErr.Code,
			"msg":  svcErr.Msg,
		})
		return
	}

	logger.Errorf("未处理的错误: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"code": 500,
		"msg":  "服务器内部错误",
	})
}
