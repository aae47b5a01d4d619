package netplug

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-netplug/config"
	"github.com/dep2p/go-netplug/internal/core/tracer"
	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
)

// Option 服务配置选项
type Option func(*options) error

// options 内部选项
type options struct {
	config    *config.Config
	decoder   pkgif.Decoder
	processor pkgif.Processor
	plugins   []pkgif.Plugin
	observers []tracer.Option
	fxOptions []fx.Option
}

func newOptions() *options {
	return &options{config: config.NewConfig()}
}

func (o *options) apply(opts ...Option) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return err
		}
	}
	return nil
}

// WithConfig 使用完整配置，替换默认配置
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return ErrNilOption
		}
		o.config = cfg.Clone()
		return nil
	}
}

// WithPreset 在当前配置上应用预设（minimal/standard/secure）
func WithPreset(name string) Option {
	return func(o *options) error {
		return config.ApplyPreset(o.config, name)
	}
}

// WithListenAddr 设置监听地址
func WithListenAddr(addr string) Option {
	return func(o *options) error {
		o.config.Engine.ListenAddr = addr
		return nil
	}
}

// WithDecoder 设置消息解码器，默认按行解码
func WithDecoder(d pkgif.Decoder) Option {
	return func(o *options) error {
		if d == nil {
			return ErrNilOption
		}
		o.decoder = d
		return nil
	}
}

// WithProcessor 设置消息处理器，默认回显
func WithProcessor(p pkgif.Processor) Option {
	return func(o *options) error {
		if p == nil {
			return ErrNilOption
		}
		o.processor = p
		return nil
	}
}

// WithPlugins 注册额外插件
//
// 额外插件按名称参与 config.Pipeline.Order 排序，未列出的追加在末尾。
func WithPlugins(plugins ...pkgif.Plugin) Option {
	return func(o *options) error {
		for _, p := range plugins {
			if p == nil {
				return ErrNilOption
			}
		}
		o.plugins = append(o.plugins, plugins...)
		return nil
	}
}

// WithTraceObservers 为追踪插件设置读写观察者，需同时启用 tracer
func WithTraceObservers(read, write tracer.Observer) Option {
	return func(o *options) error {
		if read != nil {
			o.observers = append(o.observers, tracer.WithReadObserver(read))
		}
		if write != nil {
			o.observers = append(o.observers, tracer.WithWriteObserver(write))
		}
		return nil
	}
}

// WithFxOptions 追加自定义 fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.fxOptions = append(o.fxOptions, opts...)
		return nil
	}
}
