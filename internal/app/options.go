package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dujiao-next/loyalty/internal/config"
	"github.com/dujiao-next/loyalty/internal/logger"

	"go.uber.org/zap"
)

// 启动模式
const (
	ModeAll    = "all"
	ModeAPI    = "api"
	ModeWorker = "worker"
)

// Options 应用启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

func normalizeOptions(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultStopTimeout
	}
	opts.Mode = strings.ToLower(strings.TrimSpace(opts.Mode))
	if opts.Mode == "" {
		opts.Mode = ModeAll
	}
	return opts
}

// servicePlan 按模式与队列开关决定启动哪些服务。
// 队列关闭时上游事件在 HTTP 请求内同步处理，不需要消费者。
type servicePlan struct {
	http   bool
	worker bool
}

func planServices(mode string, queueEnabled bool) (servicePlan, error) {
	switch mode {
	case ModeAll:
		return servicePlan{http: true, worker: queueEnabled}, nil
	case ModeAPI:
		return servicePlan{http: true}, nil
	case ModeWorker:
		if !queueEnabled {
			return servicePlan{}, fmt.Errorf("mode %s requires queue.enabled", mode)
		}
		return servicePlan{worker: true}, nil
	default:
		return servicePlan{}, fmt.Errorf("unknown mode %q (all/api/worker)", mode)
	}
}
