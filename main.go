package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yassir1410/ModernToDoList/config"
	"github.com/yassir1410/ModernToDoList/middleware"
	"github.com/yassir1410/ModernToDoList/repository"
	"github.com/yassir1410/ModernToDoList/routes"
	"github.com/yassir1410/ModernToDoList/services"
	"github.com/yassir1410/ModernToDoList/utils"
)

func main() {
	// 加载配置
	conf, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("无法加载配置: %v", err)
	}

	// 初始化日志
	if err := config.InitLogger(conf.LogDir, conf.IsProduction()); err != nil {
		log.Fatalf("无法初始化日志: %v", err)
	}
	defer config.Logger.Sync()

	// 初始化数据库
	db, err := config.InitDB(conf)
	if err != nil {
		config.Logger.Fatalw("无法初始化数据库", "error", err)
	}

	// 初始化Redis，未配置时令牌注销不生效
	redisClient, err := config.InitRedis(conf)
	if err != nil {
		config.Logger.Fatalw("无法初始化Redis", "error", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	userRepo := repository.NewUserRepository(db)
	todoRepo := repository.NewTodoRepository(db)
	userService := services.NewUserService(userRepo)
	todoService := services.NewTodoService(todoRepo, userRepo)
	seeder := services.NewSeeder(userService, todoService)

	if conf.SeedDemoData {
		if err := seeder.Seed(context.Background()); err != nil {
			config.Logger.Fatalw("演示数据初始化失败", "error", err)
		}
	}

	// 设置Gin模式
	if conf.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	middleware.SetupMiddleware(r, conf.AllowOrigins())
	routes.RegisterRoutes(r, routes.Dependencies{
		Users:             userService,
		Todos:             todoService,
		Seeder:            seeder,
		Sessions:          services.NewSessionStore(redisClient),
		Tokens:            utils.NewTokenManager(conf.JWTSecret, time.Duration(conf.JWTExpirationHours)*time.Hour),
		InternalAuthToken: conf.InternalAuthToken,
	})

	srv := &http.Server{
		Addr:    ":" + conf.ServerPort,
		Handler: r,
	}

	go func() {
		config.Logger.Infow("启动服务器", "port", conf.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			config.Logger.Fatalw("服务器启动失败", "error", err)
		}
	}()

	// 等待中断信号以实现优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	config.Logger.Infow("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		config.Logger.Errorw("服务器关闭失败", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	config.Logger.Infow("服务器已关闭")
}
