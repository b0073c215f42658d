package clog

import "bytes"

// withBuffer 将输出写入测试缓冲区，配合 Output: "buffer" 使用
func withBuffer(buf *bytes.Buffer) Option {
	return func(o *options) {
		o.buffer = buf
	}
}
