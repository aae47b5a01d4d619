package engine

import (
	"bytes"

	pkgif "github.com/dep2p/go-netplug/pkg/interfaces"
	"github.com/dep2p/go-netplug/pkg/types"
)

// LineDecoder 按换行切分消息，消息为去掉行尾 "\n"/"\r\n" 的字符串
type LineDecoder struct {
	// MaxLength 单行最大字节数（不含换行）
	MaxLength int
}

var _ pkgif.Decoder = LineDecoder{}

// Decode 实现 Decoder
func (d LineDecoder) Decode(buf *types.Buffer, _ pkgif.Session) (any, error) {
	data := buf.Bytes()
	i := bytes.IndexByte(data, '\n')
	if i < 0 {
		if d.MaxLength > 0 && len(data) >= d.MaxLength {
			return nil, ErrLineTooLong
		}
		return nil, nil
	}
	line := data[:i]
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	if d.MaxLength > 0 && len(line) > d.MaxLength {
		return nil, ErrLineTooLong
	}
	buf.Advance(i + 1)
	return string(line), nil
}

// LineEncoder 把字符串或字节切片编码为一行
type LineEncoder struct{}

var _ pkgif.Encoder = LineEncoder{}

// Encode 实现 Encoder
func (LineEncoder) Encode(msg any) ([]byte, error) {
	switch m := msg.(type) {
	case string:
		return append([]byte(m), '\n'), nil
	case []byte:
		return append(append([]byte(nil), m...), '\n'), nil
	}
	return nil, errUnsupportedMessage(msg)
}

// EchoProcessor 把消息原样编码写回
type EchoProcessor struct {
	Encoder pkgif.Encoder
}

var _ pkgif.Processor = EchoProcessor{}

// Process 实现 Processor
func (p EchoProcessor) Process(s pkgif.Session, msg any) error {
	enc := p.Encoder
	if enc == nil {
		enc = LineEncoder{}
	}
	out, err := enc.Encode(msg)
	if err != nil {
		return err
	}
	return s.Write(out)
}
