package tracer

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-netplug/config"
	"github.com/dep2p/go-netplug/internal/core/pipeline"
)

// ModuleInput 模块输入
type ModuleInput struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	// Options 调用方通过 fx 组 "tracer_options" 注入观察者
	Options []Option `group:"tracer_options"`
}

// ModuleOutput 模块输出
type ModuleOutput struct {
	fx.Out

	Tracer       *Tracer
	Registration pipeline.Registration `group:"plugins"`
}

// ProvideTracer 提供追踪插件
func ProvideTracer(input ModuleInput) ModuleOutput {
	t := New(ConfigFromUnified(input.UnifiedCfg), input.Options...)
	return ModuleOutput{Tracer: t, Registration: pipeline.Register(t)}
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module(Name, fx.Provide(ProvideTracer))
}

const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "tracer"
	// Description 模块描述
	Description = "字节流追踪插件"
)
