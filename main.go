package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v3"

	"wms-console/internal/config"
	"wms-console/internal/middleware"
	"wms-console/internal/pkg/banner"
	"wms-console/internal/pkg/database"
	"wms-console/internal/pkg/logger"
	"wms-console/internal/router"
	"wms-console/internal/service"
)

// 版本信息，编译时通过 ldflags 设置
var (
	Version    = "v0.1.0"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)

func main() {
	cmd := &cli.Command{
		Name:    "wms-console",
		Usage:   "仓储库位二维码管理控制台",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			configPath := cmd.String("config")

			// 如果未指定配置文件，尝试从默认位置加载
			if configPath == "" {
				for _, path := range []string{"config.yaml", filepath.Join("config", "config.yaml")} {
					if _, err := os.Stat(path); err == nil {
						configPath = path
						break
					}
				}
				if configPath == "" {
					return fmt.Errorf("未指定配置文件且未找到默认配置文件(config.yaml或config/config.yaml)")
				}
			}

			// 将配置文件路径设置到环境变量中，供config包读取
			os.Setenv("CONFIG_PATH", configPath)

			return startApp(ctx)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("应用程序启动失败: %v", err)
	}
}

// startApp 启动应用程序的主要逻辑
func startApp(ctx context.Context) error {
	banner.Print(Version, CommitHash, BuildTime)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("加载配置失败: %v", err)
	}

	if err := logger.Setup(cfg.Log); err != nil {
		return fmt.Errorf("初始化日志系统失败: %v", err)
	}
	defer logger.Close()
	logger.Info("配置加载完成")

	// 审计库可选
	if err := database.Setup(); err != nil {
		return fmt.Errorf("数据库初始化失败: %v", err)
	}
	if database.DB != nil {
		logger.Info("数据库初始化完成")
	} else {
		logger.Info("未配置数据库，打印记录和登录日志不会保存")
	}

	service.Setup(cfg, database.DB)
	service.Cron.Start()
	defer service.Cron.Stop()
	logger.Infof("会话管理启动完成，后端地址: %s", cfg.Backend.BaseURL)

	gin.SetMode(cfg.Server.Mode)
	if cfg.Server.Mode == "release" {
		logger.Info("Gin设置为生产模式")
	} else {
		logger.Info("Gin运行在调试模式")
	}

	r := gin.New()
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	router.SetupRoutes(r, GetAdminFS())
	logger.Info("路由设置完成")

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("服务器启动中，端口: %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("服务器启动失败: %v", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("正在关闭服务器...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("关闭服务器失败: %v", err)
	}
	return nil
}
