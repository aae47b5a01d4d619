package pipeline

import (
	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
	"github.com/dep2p/go-netplug/pkg/types"
)

// Base 插件默认实现：放行通道、接受消息、忽略事件
//
// 插件嵌入 Base 后只需覆盖关心的钩子。
type Base struct {
	PluginName string
}

// NewBase 创建名为 name 的 Base
func NewBase(name string) Base { return Base{PluginName: name} }

// Name 实现 Plugin
func (b Base) Name() string { return b.PluginName }

// OnAccept 实现 Plugin
func (Base) OnAccept(ch pkgif.Channel) (pkgif.Channel, error) { return ch, nil }

// OnMessage 实现 Plugin
func (Base) OnMessage(pkgif.Session, any) bool { return true }

// OnStateEvent 实现 Plugin
func (Base) OnStateEvent(pkgif.Session, types.StateStatus, error) {}
