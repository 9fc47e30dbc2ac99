package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"wms-console/internal/config"
	"wms-console/internal/pkg/backend"
	"wms-console/internal/pkg/logger"
)

// Session 一次控制台登录：持有后端 token、专属客户端和库位工作区
type Session struct {
	ID        string
	Username  string
	Workspace *BinWorkspace
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// LastSeen 最近一次请求时间
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Authenticator 用账号密码换取后端 token
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// Dialer 为会话创建后端客户端，onUnauthorized 在后端返回 401 时调用
type Dialer func(token string, onUnauthorized func()) BinBackend

// SessionOptions 会话管理参数
type SessionOptions struct {
	BaseURL        string
	Timeout        time.Duration
	MaxConcurrency int
	Recorder       PrintRecorder
}

// SessionManager 管理全部登录会话
type SessionManager struct {
	auth     Authenticator
	dial     Dialer
	limit    int
	recorder PrintRecorder
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionManager(opts SessionOptions) *SessionManager {
	dial := func(token string, onUnauthorized func()) BinBackend {
		return backend.New(opts.BaseURL, token,
			backend.WithTimeout(opts.Timeout),
			backend.OnUnauthorized(onUnauthorized))
	}
	return newSessionManager(backend.New(opts.BaseURL, "", backend.WithTimeout(opts.Timeout)), dial, opts)
}

func newSessionManager(auth Authenticator, dial Dialer, opts SessionOptions) *SessionManager {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &SessionManager{
		auth:     auth,
		dial:     dial,
		limit:    opts.MaxConcurrency,
		recorder: recorder,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Login 向后端认证并创建会话
func (m *SessionManager) Login(ctx context.Context, username, password string) (*Session, error) {
	token, err := m.auth.Login(ctx, username, password)
	if err != nil {
		logger.Warnf("用户 %s 登录后端失败: %v", username, err)
		return nil, wrap(ErrLoginFailed, err)
	}
	return m.Open(username, token), nil
}

// Open 使用已获得的后端 token 创建会话
func (m *SessionManager) Open(username, token string) *Session {
	now := m.now()
	s := &Session{
		ID:        uuid.New().String(),
		Username:  username,
		CreatedAt: now,
		lastSeen:  now,
	}
	id := s.ID
	api := m.dial(token, func() {
		logger.Warnf("会话 %s 后端 token 已失效", id)
		m.Close(id)
	})
	s.Workspace = NewBinWorkspace(api, WorkspaceOptions{
		Operator:       username,
		MaxConcurrency: m.limit,
		Recorder:       m.recorder,
	})

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	logger.Infof("用户 %s 登录，会话 %s", username, id)
	return s
}

// Get 查找会话并刷新活跃时间
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionExpired
	}
	s.touch(m.now())
	return s, nil
}

// Close 注销会话，取消其全部在途请求
func (m *SessionManager) Close(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return false
	}
	s.Workspace.Close()
	logger.Infof("会话 %s 已关闭", id)
	return true
}

// Sweep 关闭空闲超过 idle 的会话，返回关闭数量
func (m *SessionManager) Sweep(idle time.Duration) int {
	if idle <= 0 {
		return 0
	}
	deadline := m.now().Add(-idle)

	var expired []string
	m.mu.RLock()
	for id, s := range m.sessions {
		if s.LastSeen().Before(deadline) {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()

	n := 0
	for _, id := range expired {
		if m.Close(id) {
			n++
		}
	}
	return n
}

// Len 当前会话数
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

var (
	Sessions *SessionManager
	Audits   = NewAudit(nil)
)

// Setup 根据配置初始化会话管理和审计，db 可以为 nil
func Setup(cfg *config.Config, db *gorm.DB) {
	Audits = NewAudit(db)

	var recorder PrintRecorder = NopRecorder{}
	if Audits.Enabled() {
		recorder = Audits
	}
	Sessions = NewSessionManager(SessionOptions{
		BaseURL:        cfg.Backend.BaseURL,
		Timeout:        cfg.Backend.Timeout(),
		MaxConcurrency: cfg.Backend.MaxConcurrency,
		Recorder:       recorder,
	})
	Cron = NewCronService(Sessions, cfg.IdleTimeout())
}
