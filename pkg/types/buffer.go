package types

// ============================================================================
//                              Buffer - 读写缓冲区
// ============================================================================

// Buffer 带 position/limit 的字节缓冲区
//
// 读操作从 position 起最多填充到 limit，写操作发送 [position, limit) 区间，
// 完成后 position 前移实际传输的字节数。
//
//	0 <= position <= limit <= capacity
type Buffer struct {
	buf   []byte
	pos   int
	limit int
}

// NewBuffer 创建容量为 capacity 的空缓冲区（position=0, limit=capacity）
func NewBuffer(capacity int) *Buffer {
	return &Buffer{buf: make([]byte, capacity), limit: capacity}
}

// WrapBuffer 包装已有数据（position=0, limit=len(b)）
func WrapBuffer(b []byte) *Buffer {
	return &Buffer{buf: b, limit: len(b)}
}

// Bytes 返回 [position, limit) 区间
func (b *Buffer) Bytes() []byte { return b.buf[b.pos:b.limit] }

// Array 返回底层数组
func (b *Buffer) Array() []byte { return b.buf }

// Capacity 返回容量
func (b *Buffer) Capacity() int { return len(b.buf) }

// Position 返回当前位置
func (b *Buffer) Position() int { return b.pos }

// Limit 返回当前上限
func (b *Buffer) Limit() int { return b.limit }

// Remaining 返回 limit - position
func (b *Buffer) Remaining() int { return b.limit - b.pos }

// HasRemaining 是否还有剩余空间/数据
func (b *Buffer) HasRemaining() bool { return b.pos < b.limit }

// SetPosition 设置位置
func (b *Buffer) SetPosition(pos int) {
	if pos < 0 || pos > b.limit {
		panic("types: buffer position out of range")
	}
	b.pos = pos
}

// SetLimit 设置上限，position 超出时被截到新上限
func (b *Buffer) SetLimit(limit int) {
	if limit < 0 || limit > len(b.buf) {
		panic("types: buffer limit out of range")
	}
	b.limit = limit
	if b.pos > limit {
		b.pos = limit
	}
}

// Advance position 前移 n
func (b *Buffer) Advance(n int) {
	b.SetPosition(b.pos + n)
}

// Flip 由写入模式切换到读取模式：limit=position, position=0
func (b *Buffer) Flip() {
	b.limit = b.pos
	b.pos = 0
}

// Clear 重置为整个容量可写
func (b *Buffer) Clear() {
	b.pos = 0
	b.limit = len(b.buf)
}

// Compact 将未读数据移至开头，并切换回写入模式
func (b *Buffer) Compact() {
	n := copy(b.buf, b.buf[b.pos:b.limit])
	b.pos = n
	b.limit = len(b.buf)
}
