package pipeline

import (
	"context"
	"sort"

	"go.uber.org/fx"

	"github.com/dep2p/go-netplug/config"
	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
)

// ============================================================================
//                              Fx 模块
// ============================================================================

// GroupPlugins 插件注册的 fx 值组名
const GroupPlugins = "plugins"

// Registration 插件注册项
//
// fx 值组无序，流水线按 config.Pipeline.Order 排列注册项。
type Registration struct {
	Name   string
	Plugin pkgif.Plugin
}

// Register 构造注册项，名称取插件自身名称
func Register(p pkgif.Plugin) Registration {
	return Registration{Name: p.Name(), Plugin: p}
}

// ModuleInput 模块输入
type ModuleInput struct {
	fx.In

	Registrations []Registration `group:"plugins"`
	UnifiedCfg    *config.Config `optional:"true"`
}

// ModuleOutput 模块输出
type ModuleOutput struct {
	fx.Out

	Pipeline *Pipeline
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module(Name,
		fx.Provide(ProvidePipeline),
		fx.Invoke(registerLifecycle),
	)
}

// ProvidePipeline 按配置顺序组装流水线
func ProvidePipeline(input ModuleInput) ModuleOutput {
	order := config.DefaultPipelineConfig().Order
	if input.UnifiedCfg != nil {
		order = input.UnifiedCfg.Pipeline.Order
	}

	p := New(Order(input.Registrations, order)...)
	for i, pl := range p.Plugins() {
		log.Info("pipeline plugin", "position", i, "plugin", pl.Name())
	}
	return ModuleOutput{Pipeline: p}
}

// Order 按 order 排列注册项
//
// order 中出现的名称按其位置排列；未出现的按名称排序追加在末尾。
func Order(regs []Registration, order []string) []pkgif.Plugin {
	rank := make(map[string]int, len(order))
	for i, name := range order {
		rank[name] = i
	}

	sorted := append([]Registration(nil), regs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, iok := rank[sorted[i].Name]
		rj, jok := rank[sorted[j].Name]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return sorted[i].Name < sorted[j].Name
		}
	})

	out := make([]pkgif.Plugin, 0, len(sorted))
	for _, r := range sorted {
		if r.Plugin != nil {
			out = append(out, r.Plugin)
		}
	}
	return out
}

func registerLifecycle(lc fx.Lifecycle, p *Pipeline) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return p.Close()
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
	Name = "pipeline"
	// Description 模块描述
	Description = "插件流水线，按注册顺序分发接入、消息与状态钩子"
)
