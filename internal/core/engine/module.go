package engine

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-netplug/config"
	"github.com/dep2p/go-netplug/internal/core/pipeline"
	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
	"github.com/dep2p/go-netplug/pkg/types"
)

// ModuleInput 模块输入
type ModuleInput struct {
	fx.In

	Pipeline   *pipeline.Pipeline
	UnifiedCfg *config.Config  `optional:"true"`
	EventBus   pkgif.EventBus  `optional:"true"`
	Decoder    pkgif.Decoder   `optional:"true"`
	Processor  pkgif.Processor `optional:"true"`
}

// ModuleOutput 模块输出
type ModuleOutput struct {
	fx.Out

	Engine        *Engine
	StatsProvider pkgif.StatsProvider
}

// ProvideEngine 提供引擎，未注入的解码器与处理器使用行协议回显
func ProvideEngine(input ModuleInput) (ModuleOutput, error) {
	var opts []Option
	if input.Decoder != nil {
		opts = append(opts, WithDecoder(input.Decoder))
	}
	if input.Processor != nil {
		opts = append(opts, WithProcessor(input.Processor))
	}
	if input.EventBus != nil {
		em, err := input.EventBus.Emitter(new(types.EvtSessionState))
		if err != nil {
			return ModuleOutput{}, err
		}
		opts = append(opts, WithEmitter(em))
	}

	e, err := New(ConfigFromUnified(input.UnifiedCfg), input.Pipeline, opts...)
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Engine: e, StatsProvider: e}, nil
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module(Name,
		fx.Provide(ProvideEngine),
		fx.Invoke(registerLifecycle),
	)
}

func registerLifecycle(lc fx.Lifecycle, e *Engine) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return e.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return e.Stop(ctx)
		},
	})
}

const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "engine"
	// Description 模块描述
	Description = "TCP 服务引擎，驱动插件流水线"
)
