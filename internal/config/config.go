package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level"`       // 日志级别: debug, info, warn, error
	Format     string `yaml:"format"`      // 日志格式: json, text
	Output     string `yaml:"output"`      // 输出方式: console, file, both
	FilePath   string `yaml:"file_path"`   // 日志文件路径
	MaxSize    int    `yaml:"max_size"`    // 单个日志文件最大大小(MB)
	MaxBackups int    `yaml:"max_backups"` // 保留的旧日志文件数量
	MaxAge     int    `yaml:"max_age"`     // 日志文件保留天数
	Compress   bool   `yaml:"compress"`    // 是否压缩旧日志文件
}

// BackendConfig 仓储后端 REST 服务配置
type BackendConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"` // 0 表示不设置超时
	MaxConcurrency int    `yaml:"max_concurrency"` // 批量请求并发上限，0 表示不限制
}

// Timeout 请求超时时间
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// DatabaseConfig 审计库配置，driver 为空时不启用
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // mysql, postgres
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

// Enabled 是否配置了数据库
func (d DatabaseConfig) Enabled() bool {
	return d.Driver != "" && d.Driver != "none"
}

type Config struct {
	Server struct {
		Port string `yaml:"port"`
		Mode string `yaml:"mode"`
		// 允许跨域调用的页面来源，留空时只接受同源请求
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`

	Backend  BackendConfig  `yaml:"backend"`
	Database DatabaseConfig `yaml:"database"`

	JWT struct {
		Secret     string `yaml:"secret"`
		ExpireTime int    `yaml:"expire_time"` // 秒
	} `yaml:"jwt"`

	Session struct {
		CookieName  string `yaml:"cookie_name"`
		IdleTimeout int    `yaml:"idle_timeout"` // 秒
	} `yaml:"session"`

	Log LogConfig `yaml:"log"`
}

// IdleTimeout 会话空闲过期时间
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Session.IdleTimeout) * time.Second
}

var GlobalConfig *Config

func Load() (*Config, error) {
	if GlobalConfig != nil {
		return GlobalConfig, nil
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		workDir, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("获取工作目录失败: %v", err)
		}

		configPath = filepath.Join(workDir, "config", "config.yaml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = filepath.Join(workDir, "config.yaml")
		}
	}

	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败 %s: %v", configPath, err)
	}

	config, err := Parse(configFile)
	if err != nil {
		return nil, err
	}

	GlobalConfig = config
	return config, nil
}

// AllowsOrigin 来源是否在跨域白名单中
func (c *Config) AllowsOrigin(origin string) bool {
	if c == nil || origin == "" {
		return false
	}
	origin = strings.TrimRight(origin, "/")
	for _, o := range c.Server.AllowedOrigins {
		if strings.EqualFold(strings.TrimRight(o, "/"), origin) {
			return true
		}
	}
	return false
}

// Parse 解析配置内容并填充默认值
func Parse(data []byte) (*Config, error) {
	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %v", err)
	}

	if config.Server.Port == "" {
		config.Server.Port = "8090"
	}
	if config.Server.Mode == "" {
		config.Server.Mode = "debug"
	}

	// 后端默认指向本机
	if config.Backend.BaseURL == "" {
		config.Backend.BaseURL = "http://localhost:8080"
	}
	config.Backend.BaseURL = strings.TrimRight(config.Backend.BaseURL, "/")
	if config.Backend.TimeoutSeconds < 0 {
		return nil, fmt.Errorf("backend.timeout_seconds 不能为负数: %d", config.Backend.TimeoutSeconds)
	}
	if config.Backend.MaxConcurrency < 0 {
		return nil, fmt.Errorf("backend.max_concurrency 不能为负数: %d", config.Backend.MaxConcurrency)
	}

	if config.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret 未配置")
	}
	if config.JWT.ExpireTime == 0 {
		config.JWT.ExpireTime = 8 * 3600
	}

	if config.Session.CookieName == "" {
		config.Session.CookieName = "authToken"
	}
	if config.Session.IdleTimeout == 0 {
		config.Session.IdleTimeout = 30 * 60
	}

	if config.Database.Enabled() && config.Database.Port == "" {
		switch config.Database.Driver {
		case "mysql":
			config.Database.Port = "3306"
		case "postgres":
			config.Database.Port = "5432"
		}
	}

	// 日志配置默认值
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}
	if config.Log.Output == "" {
		config.Log.Output = "console"
	}
	if config.Log.FilePath == "" {
		config.Log.FilePath = "logs/app.log"
	}
	if config.Log.MaxSize == 0 {
		config.Log.MaxSize = 100 // 100MB
	}
	if config.Log.MaxBackups == 0 {
		config.Log.MaxBackups = 3
	}
	if config.Log.MaxAge == 0 {
		config.Log.MaxAge = 28 // 28天
	}

	return config, nil
}
