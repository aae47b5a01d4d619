package sockopt

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-netplug/config"
	"github.com/dep2p/go-netplug/internal/core/pipeline"
)

// ModuleInput 模块输入
type ModuleInput struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// ModuleOutput 模块输出
type ModuleOutput struct {
	fx.Out

	Plugin       *Plugin
	Registration pipeline.Registration `group:"plugins"`
}

// ProvidePlugin 提供套接字调优插件
func ProvidePlugin(input ModuleInput) (ModuleOutput, error) {
	p, err := New(ConfigFromUnified(input.UnifiedCfg))
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Plugin: p, Registration: pipeline.Register(p)}, nil
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module(Name, fx.Provide(ProvidePlugin))
}

const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "transport/sockopt"
	// Description 模块描述
	Description = "套接字调优插件"
)
