package service

import (
	"sync"
	"time"

	"wms-console/internal/pkg/logger"
)

// CronService 定时任务服务
type CronService struct {
	sessions *SessionManager
	idle     time.Duration
	interval time.Duration

	stopOnce sync.Once
	stopChan chan struct{}
}

var Cron *CronService

func NewCronService(sessions *SessionManager, idle time.Duration) *CronService {
	return &CronService{
		sessions: sessions,
		idle:     idle,
		interval: time.Minute,
		stopChan: make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *CronService) Start() {
	go s.sweepIdleSessions()
}

// Stop 停止定时任务
func (s *CronService) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

// sweepIdleSessions 关闭长时间无请求的会话
func (s *CronService) sweepIdleSessions() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.sessions.Sweep(s.idle); n > 0 {
				logger.Infof("清理空闲会话 %d 个，剩余 %d 个", n, s.sessions.Len())
			}
		case <-s.stopChan:
			return
		}
	}
}
