package ratelimit

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-netplug/config"
	"github.com/dep2p/go-netplug/internal/core/pipeline"
	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
)

// ModuleInput 模块输入
type ModuleInput struct {
	fx.In

	Scheduler  pkgif.Scheduler
	UnifiedCfg *config.Config `optional:"true"`
}

// ModuleOutput 模块输出
type ModuleOutput struct {
	fx.Out

	Limiter      *Limiter
	Registration pipeline.Registration `group:"plugins"`
}

// ProvideLimiter 提供限速插件
func ProvideLimiter(input ModuleInput) (ModuleOutput, error) {
	l, err := New(ConfigFromUnified(input.UnifiedCfg), input.Scheduler)
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Limiter: l, Registration: pipeline.Register(l)}, nil
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module(Name, fx.Provide(ProvideLimiter))
}

const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "ratelimit"
	// Description 模块描述
	Description = "按连接读写限速插件"
)
