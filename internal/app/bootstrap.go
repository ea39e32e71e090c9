package app

import (
	"errors"

	"github.com/dujiao-next/loyalty/internal/config"
	"github.com/dujiao-next/loyalty/internal/provider"
	"github.com/dujiao-next/loyalty/internal/router"
	"github.com/dujiao-next/loyalty/internal/worker"
)

// BuildRunner 按启动模式组装 HTTP 服务与队列消费者
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	plan, err := planServices(mode, cfg.Queue.Enabled)
	if err != nil {
		return nil, err
	}

	container := provider.NewContainer(cfg)
	var services []Service
	if plan.http {
		services = append(services, NewHTTPService(cfg.Server, router.SetupRouter(cfg, container)))
	}
	if plan.worker {
		workerService, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	}
	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}
	opts.Logger.Infow("app_start",
		"host", opts.Config.Server.Host,
		"port", opts.Config.Server.Port,
		"mode", opts.Mode,
		"queue_enabled", opts.Config.Queue.Enabled,
	)
	return RunWithOptions(runner, opts)
}
