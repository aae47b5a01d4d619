package liveness

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-netplug/config"
	"github.com/dep2p/go-netplug/internal/core/pipeline"
	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
)

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	Scheduler  pkgif.Scheduler
	UnifiedCfg *config.Config `optional:"true"`
}

// ============================================================================
//                              模块输出服务
// ============================================================================

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	Service      *Service
	Registration pipeline.Registration `group:"plugins"`
}

// ProvideService 提供心跳插件，探测消息按统一配置的文本行协议收发
func ProvideService(input ModuleInput) (ModuleOutput, error) {
	hb := config.DefaultHeartbeatConfig()
	if input.UnifiedCfg != nil {
		hb = input.UnifiedCfg.Heartbeat
	}

	svc, err := NewService(ConfigFromUnified(input.UnifiedCfg), input.Scheduler,
		LineProtocol(hb.Probe, hb.Reply))
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Service: svc, Registration: pipeline.Register(svc)}, nil
}

// ============================================================================
//                              模块定义
// ============================================================================

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module(Name,
		fx.Provide(ProvideService),
		fx.Invoke(registerLifecycle),
	)
}

func registerLifecycle(lc fx.Lifecycle, svc *Service) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			log.Info("heartbeat module stopping", "tracked", svc.Stats().Tracked)
			return svc.Stop()
		},
	})
}

// ============================================================================
//                              模块元信息
// ============================================================================

const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "liveness"
	// Description 模块描述
	Description = "会话心跳插件，负责空闲探测与超时关闭"
)
