package gater

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

	Blacklist    *Blacklist
	Registration pipeline.Registration `group:"plugins"`
}

// ProvideBlacklist 提供黑名单插件并注册到流水线
func ProvideBlacklist(input ModuleInput) (ModuleOutput, error) {
	b, err := New(ConfigFromUnified(input.UnifiedCfg))
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Blacklist: b, Registration: pipeline.Register(b)}, nil
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module(Name, fx.Provide(ProvideBlacklist))
}

const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "gater"
	// Description 模块描述
	Description = "接入黑名单插件"
)
