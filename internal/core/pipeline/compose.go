package pipeline

import pkgif "github.com/dep2p/go-netplug/pkg/interfaces"

// Compose 将通道变换按顺序左折叠为一个变换
//
// 任一变换返回错误即中止，返回 nil 通道视为不变。
func Compose(transforms ...pkgif.ChannelTransform) pkgif.ChannelTransform {
	return func(ch pkgif.Channel) (pkgif.Channel, error) {
		for _, t := range transforms {
			next, err := t(ch)
			if err != nil {
				return nil, err
			}
			if next != nil {
				ch = next
			}
		}
		return ch, nil
	}
}
