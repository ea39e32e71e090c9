package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/dujiao-next/loyalty/internal/app"
	"github.com/dujiao-next/loyalty/internal/config"
	"github.com/dujiao-next/loyalty/internal/logger"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiCyan  = "\033[36m"
	ansiMag   = "\033[95m"
)

var weakSecretMarkers = []string{"change-me", "change-in-production", "your-secret-key"}

func main() {
	mode := flag.String("mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()

	printStartupBanner(*mode)

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	release := cfg.Server.Mode == "release"

	for _, name := range weakSecrets(cfg.Auth) {
		if release {
			stdLog.Fatalf("%s 过弱或仍为默认值，请在生产环境中配置强随机密钥", name)
		}
		stdLog.Printf("警告: %s 过弱或仍为默认值，建议在生产环境中更换", name)
	}

	if err := app.PrepareDatabase(cfg.Database); err != nil {
		stdLog.Fatalf("数据库准备失败: %v", err)
	}

	if release {
		gin.SetMode(gin.ReleaseMode)
	}

	err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    *mode,
	})
	if err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

// weakSecrets 返回过短或仍为占位值的签名密钥配置项
func weakSecrets(auth config.AuthConfig) []string {
	var names []string
	if isWeakSecret(auth.User.SecretKey) {
		names = append(names, "auth.user.secret")
	}
	if isWeakSecret(auth.Service.SecretKey) {
		names = append(names, "auth.service.secret")
	}
	return names
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	lowered := strings.ToLower(secret)
	for _, marker := range weakSecretMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

func printStartupBanner(mode string) {
	rule := strings.Repeat("─", 56)
	fmt.Println(ansiMag + rule + ansiReset)
	fmt.Println(ansiMag + ansiBold + "  Dujiao-Next Loyalty" + ansiReset + ansiDim + "  (mode: " + mode + ")" + ansiReset)
	fmt.Println(ansiCyan + "  tiers · points · coupons · referrals" + ansiReset)
	fmt.Println(ansiDim + "  /api/v1/me/*   /api/v1/internal/*   /health" + ansiReset)
	fmt.Println(ansiMag + rule + ansiReset)
}
