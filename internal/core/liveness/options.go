package liveness

import (
	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
)

// ProbeFunc 向会话发送心跳探测
type ProbeFunc func(s pkgif.Session) error

// TimeoutFunc 会话超时回调
type TimeoutFunc func(s pkgif.Session)

// Classifier 判断消息是否为心跳
type Classifier func(msg any) bool

// Option 心跳插件选项
type Option func(*Service)

// WithProbe 设置探测发送函数
func WithProbe(fn ProbeFunc) Option {
	return func(s *Service) { s.probe = fn }
}

// WithTimeoutHandler 替换默认的超时处理（立即关闭会话）
func WithTimeoutHandler(fn TimeoutFunc) Option {
	return func(s *Service) { s.onTimeout = fn }
}

// WithClassifier 设置心跳消息判定
func WithClassifier(fn Classifier) Option {
	return func(s *Service) { s.isHeartbeat = fn }
}

// WithResponder 收到心跳消息时的应答函数
func WithResponder(fn func(s pkgif.Session, msg any)) Option {
	return func(s *Service) { s.respond = fn }
}

// LineProtocol 基于文本行的心跳：发送 probe，收到 probe 回复 reply，
// probe 与 reply 均视为心跳消息
func LineProtocol(probe, reply string) Option {
	return func(s *Service) {
		s.probe = func(sess pkgif.Session) error {
			return sess.Write([]byte(probe + "\n"))
		}
		s.isHeartbeat = func(msg any) bool {
			line, ok := msg.(string)
			return ok && (line == probe || (reply != "" && line == reply))
		}
		if reply != "" {
			s.respond = func(sess pkgif.Session, msg any) {
				if msg == probe {
					if err := sess.Write([]byte(reply + "\n")); err != nil {
						log.Debug("heartbeat reply failed", "session", sess.ID(), "err", err)
					}
				}
			}
		}
	}
}
