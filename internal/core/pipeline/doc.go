// Package pipeline 实现插件流水线
//
// 流水线按注册顺序调用插件的三类钩子：
//
//   - OnAccept：每个插件的接入钩子是一个通道变换，按顺序左折叠，
//     后一个插件看到的是前面所有插件包装后的通道；首个拒绝中止整条链。
//   - OnMessage：首个返回 false 的插件中止后续插件与处理器。
//   - OnStateEvent：广播给所有插件，单个插件 panic 被恢复并记录，不影响其他插件。
//
// 注册只能追加，运行中不会重排。
package pipeline
