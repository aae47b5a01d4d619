package eventbus

import pkgif "github.com/dep2p/go-netplug/pkg/interfaces"

// BufSize 等价于 interfaces.BufSize
func BufSize(size int) pkgif.SubscriptionOpt { return pkgif.BufSize(size) }

// Stateful 等价于 interfaces.Stateful
func Stateful() pkgif.EmitterOpt { return pkgif.Stateful() }
