package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"wms-console/internal/config"
	"wms-console/internal/middleware"
	"wms-console/internal/model"
	"wms-console/internal/pkg/logger"
	"wms-console/internal/service"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 用后端账号登录控制台，成功后下发 token 和 cookie
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "Please fill in all required fields",
		})
		return
	}

	loginLog := model.AdminLoginLog{
		Username:  req.Username,
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}
	defer func() {
		if err := service.Audits.RecordLogin(c.Request.Context(), loginLog); err != nil {
			logger.Warnf("写入登录日志失败: %v", err)
		}
	}()

	sess, err := service.Sessions.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		loginLog.FailReason = failReason(err)
		c.JSON(http.StatusUnauthorized, gin.H{
			"code": 401,
			"msg":  service.ErrLoginFailed.Msg,
		})
		return
	}

	token, err := middleware.GenerateToken(sess.ID, sess.Username)
	if err != nil {
		service.Sessions.Close(sess.ID)
		loginLog.FailReason = "生成token失败"
		logger.Errorf("生成token失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "生成token失败",
		})
		return
	}

	loginLog.IsSuccess = true
	loginLog.SessionID = sess.ID

	cfg := config.GlobalConfig
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.Session.CookieName, token, cfg.JWT.ExpireTime, "/", "", false, true)

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  service.MsgWelcome,
		"data": gin.H{
			"token":    token,
			"username": sess.Username,
		},
	})
}

// Logout 关闭会话并清除 cookie
func Logout(c *gin.Context) {
	if sess := middleware.CurrentSession(c); sess != nil {
		service.Sessions.Close(sess.ID)
	}
	c.SetCookie(config.GlobalConfig.Session.CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  "Logged out",
	})
}

func failReason(err error) string {
	var svcErr *service.Error
	if errors.As(err, &svcErr) && svcErr.Err != nil {
		return truncate(svcErr.Err.Error(), 255)
	}
	return truncate(err.Error(), 255)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
