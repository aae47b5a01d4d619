package scheduler

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-netplug/config"
	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
)

// ModuleInput 模块输入
type ModuleInput struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// ModuleOutput 模块输出
type ModuleOutput struct {
	fx.Out

	Scheduler *Scheduler
	Interface pkgif.Scheduler
}

// ProvideScheduler 提供调度器
func ProvideScheduler(input ModuleInput) (ModuleOutput, error) {
	s, err := New(ConfigFromUnified(input.UnifiedCfg))
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Scheduler: s, Interface: s}, nil
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module(Name,
		fx.Provide(ProvideScheduler),
		fx.Invoke(registerLifecycle),
	)
}

func registerLifecycle(lc fx.Lifecycle, s *Scheduler) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			s.Stop()
			return nil
		},
	})
}

const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "scheduler"
	// Description 模块描述
	Description = "共享定时任务调度器"
)
