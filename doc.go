// Package netplug 提供可插拔拦截流水线的 TCP 服务
//
// 服务由引擎和插件流水线组成。引擎负责接入、读写和会话生命周期，
// 插件在三个位置拦截：接入（包装或拒绝通道）、消息预处理、状态通知。
//
// # 快速开始
//
//	cfg := config.NewConfig()
//	cfg.Engine.ListenAddr = "0.0.0.0:9000"
//	cfg.Blacklist.Enable = true
//	cfg.Blacklist.Rules = []string{"10.0.0.0/8"}
//
//	srv, err := netplug.New(netplug.WithConfig(cfg))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Stop(context.Background())
//
// # 内置插件
//
//	┌──────────────┬────────────────────────────────────────────┐
//	│ sockopt      │ 接入时设置套接字选项                         │
//	│ blacklist    │ 按地址/网段拒绝接入                          │
//	│ ratelimit    │ 固定窗口读写限速                             │
//	│ monitor      │ 流量统计、周期快照、Prometheus 导出           │
//	│ tls          │ TLS 握手后以明文通道替换原通道                 │
//	│ tracer       │ 字节流观察                                  │
//	│ heartbeat    │ 空闲探测与超时关闭                           │
//	└──────────────┴────────────────────────────────────────────┘
//
// 插件顺序由 config.Pipeline.Order 决定。位于 tls 之前的装饰器看到密文，
// 之后的看到明文。
//
// # 文件组织
//
//   - netplug.go: Server 与生命周期
//   - options.go: 选项
//   - fx.go:      模块装配
//   - errors.go:  错误定义
package netplug
