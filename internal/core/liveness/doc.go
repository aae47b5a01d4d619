// Package liveness 实现会话心跳插件
//
// 每个会话在 NEW_SESSION 时记录最近活动时间，并由共享调度器每隔 HeartRate 检查一次：
//
//   - 会话已失效：清理状态，不再检查
//   - 配置了 Timeout 且空闲超过 Timeout：调用超时回调（默认立即关闭会话），不再检查
//   - 空闲超过 HeartRate：发送探测，继续检查
//   - 其余情况：继续检查
//
// 任何入站消息都刷新活动时间；被判定为心跳的消息（探测或应答）不交给消息处理器。
// Timeout 为 0 时只探测、从不关闭会话。
//
// 超时检测的粒度为 HeartRate：空闲超过 Timeout 后，最迟在下一次检查时关闭。
package liveness
