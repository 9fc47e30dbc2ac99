package model

import (
	"time"

	"gorm.io/gorm"
)

// AdminLoginLog 控制台登录日志
type AdminLoginLog struct {
	ID         uint      `gorm:"primarykey"`
	Username   string    `gorm:"size:64;index"` // 登录账号
	SessionID  string    `gorm:"size:64"`       // 成功时的会话ID
	IP         string    `gorm:"size:64"`
	UserAgent  string    `gorm:"size:255"`
	IsSuccess  bool      `gorm:"default:false"`
	FailReason string    `gorm:"size:255"` // 后端返回的失败原因
	LoginTime  time.Time `gorm:"index"`
	CreatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}
