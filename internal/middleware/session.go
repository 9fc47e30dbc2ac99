package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"

	"wms-console/internal/config"
	"wms-console/internal/pkg/logger"
	"wms-console/internal/service"
)

const sessionKey = "session"

type Claims struct {
	SessionID string `json:"sid"`
	Username  string `json:"username"`
	jwt.StandardClaims
}

// Session 校验控制台 token 并把会话放入上下文。
// token 可以来自 Authorization 头或登录时下发的 cookie。
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.GlobalConfig == nil || service.Sessions == nil {
			logger.Error("配置或会话管理未初始化")
			c.JSON(http.StatusInternalServerError, gin.H{
				"code": 500,
				"msg":  "系统错误，无法验证身份",
			})
			c.Abort()
			return
		}

		tokenStr, err := extractToken(c, config.GlobalConfig.Session.CookieName)
		if err != nil {
			unauthorized(c, err.Error())
			return
		}

		claims, err := parseToken(tokenStr, config.GlobalConfig.JWT.Secret)
		if err != nil {
			unauthorized(c, "token无效: "+err.Error())
			return
		}

		sess, err := service.Sessions.Get(claims.SessionID)
		if err != nil {
			unauthorized(c, service.ErrSessionExpired.Msg)
			return
		}

		c.Set(sessionKey, sess)
		c.Set("username", claims.Username)
		c.Next()
	}
}

// CurrentSession 取出 Session 中间件放入的会话
func CurrentSession(c *gin.Context) *service.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*service.Session)
	return s
}

func unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"code": 401,
		"msg":  msg,
	})
	c.Abort()
}

func extractToken(c *gin.Context, cookieName string) (string, error) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return "", fmt.Errorf("token格式错误")
		}
		return parts[1], nil
	}
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie, nil
	}
	return "", fmt.Errorf("未登录或token已过期")
}

func parseToken(tokenString string, secretKey string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// 验证签名方法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("不支持的签名方法: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("无效的token")
}

// GenerateToken 为会话签发控制台 token
func GenerateToken(sessionID, username string) (string, error) {
	if config.GlobalConfig == nil {
		return "", fmt.Errorf("配置未初始化")
	}
	jwtConfig := config.GlobalConfig.JWT

	now := time.Now()
	claims := Claims{
		SessionID: sessionID,
		Username:  username,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(time.Duration(jwtConfig.ExpireTime) * time.Second).Unix(),
			IssuedAt:  now.Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtConfig.Secret))
}
