package app

import (
	"errors"

	"github.com/realty-promo/internal/config"
	"github.com/realty-promo/internal/provider"
	"github.com/realty-promo/internal/router"
	"github.com/realty-promo/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	mode, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}

	container := provider.NewContainer(cfg)

	var services []Service

	// 初始化 HTTP 服务
	if servesHTTP(mode) {
		services = append(services, NewHTTPService(cfg.Server, router.SetupRouter(cfg, container)))
	}

	// 初始化 Worker 服务：队列启用时由 asynq 消费并调度周期任务，否则使用进程内 cron
	if runsJobs(mode) {
		consumer := worker.NewConsumer(container)
		if cfg.Queue.Enabled && container.QueueClient.Enabled() {
			workerService, err := worker.NewService(cfg, consumer)
			if err != nil {
				container.Close()
				return nil, err
			}
			services = append(services, workerService)
		} else {
			cronService, err := worker.NewCronService(cfg, consumer)
			if err != nil {
				container.Close()
				return nil, err
			}
			services = append(services, cronService)
		}
	}

	if len(services) == 0 {
		container.Close()
		return nil, errors.New("no services initialized (check mode and config)")
	}

	runner := NewRunner(services...)
	runner.onClose = container.Close
	return runner, nil
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

	opts.Logger.Infow("app_start", "addr", opts.Config.Server.Addr(), "mode", opts.Mode, "queue_enabled", opts.Config.Queue.Enabled)
	return RunWithOptions(runner, opts)
}
