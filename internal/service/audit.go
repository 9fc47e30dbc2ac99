package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"wms-console/internal/model"
)

// PrintRecorder 记录批量打印任务
type PrintRecorder interface {
	RecordPrint(ctx context.Context, operator string, binIDs []string, printed int) error
}

// NopRecorder 未配置数据库时使用
type NopRecorder struct{}

func (NopRecorder) RecordPrint(context.Context, string, []string, int) error { return nil }

// Audit 基于 gorm 的打印任务与登录日志
type Audit struct {
	db *gorm.DB
}

// NewAudit db 为 nil 时所有写操作被忽略，查询返回空
func NewAudit(db *gorm.DB) *Audit {
	return &Audit{db: db}
}

func (a *Audit) Enabled() bool {
	return a != nil && a.db != nil
}

func (a *Audit) RecordPrint(ctx context.Context, operator string, binIDs []string, printed int) error {
	if !a.Enabled() {
		return nil
	}
	job := &model.PrintJob{
		JobNo:     uuid.New().String(),
		Operator:  operator,
		Requested: len(binIDs),
		Printed:   printed,
	}
	job.SetBinIDs(binIDs)
	if err := a.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("保存打印任务失败: %v", err)
	}
	return nil
}

// RecordLogin 写入登录日志
func (a *Audit) RecordLogin(ctx context.Context, entry model.AdminLoginLog) error {
	if !a.Enabled() {
		return nil
	}
	if entry.LoginTime.IsZero() {
		entry.LoginTime = time.Now()
	}
	if err := a.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("保存登录日志失败: %v", err)
	}
	return nil
}

// PrintJobQuery 打印任务查询条件
type PrintJobQuery struct {
	Page     int
	Size     int
	Operator string
}

func (q *PrintJobQuery) normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Size < 1 || q.Size > 100 {
		q.Size = 10
	}
}

// ListPrintJobs 分页查询打印任务
func (a *Audit) ListPrintJobs(ctx context.Context, q PrintJobQuery) ([]model.PrintJob, int64, error) {
	if !a.Enabled() {
		return nil, 0, nil
	}
	q.normalize()

	db := a.db.WithContext(ctx).Model(&model.PrintJob{})
	if q.Operator != "" {
		db = db.Where("operator = ?", q.Operator)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取打印任务总数失败: %v", err)
	}

	var jobs []model.PrintJob
	if err := db.Order("created_at DESC").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size).
		Find(&jobs).Error; err != nil {
		return nil, 0, fmt.Errorf("获取打印任务失败: %v", err)
	}
	return jobs, total, nil
}

// LoginLogQuery 登录日志查询条件
type LoginLogQuery struct {
	Page     int
	Size     int
	Username string
	Status   string // success 或 fail
	Start    time.Time
	End      time.Time
}

// ListLoginLogs 分页查询登录日志
func (a *Audit) ListLoginLogs(ctx context.Context, q LoginLogQuery) ([]model.AdminLoginLog, int64, error) {
	if !a.Enabled() {
		return nil, 0, nil
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Size < 1 || q.Size > 100 {
		q.Size = 10
	}

	db := a.db.WithContext(ctx).Model(&model.AdminLoginLog{})
	if q.Username != "" {
		db = db.Where("username LIKE ?", "%"+q.Username+"%")
	}
	if q.Status == "success" {
		db = db.Where("is_success = ?", true)
	} else if q.Status == "fail" {
		db = db.Where("is_success = ?", false)
	}
	if !q.Start.IsZero() {
		db = db.Where("login_time >= ?", q.Start)
	}
	if !q.End.IsZero() {
		db = db.Where("login_time <= ?", q.End)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取登录日志总数失败: %v", err)
	}

	var logs []model.AdminLoginLog
	if err := db.Order("login_time DESC").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size).
		Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("获取登录日志失败: %v", err)
	}
	return logs, total, nil
}
