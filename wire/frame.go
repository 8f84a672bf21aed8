// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import "encoding/binary"

const (
	// LenHeaderSize is the width, in bytes, of a frame's payload-length
	// field.
	LenHeaderSize = 4
	// TSHeaderSize is the width, in bytes, of a frame's send-timestamp
	// field.
	TSHeaderSize = 8
	// FrameHeaderSize is the combined width of a frame's header, before
	// its payload.
	FrameHeaderSize = LenHeaderSize + TSHeaderSize
	// RxBufSize is the size of a stream's receive scratch buffer.
	RxBufSize = 32 * 1024
	// SendBufSize is 32 KiB. [Stream] does not size its send backlog from
	// it: the backlog starts empty and grows as frames are appended.
	SendBufSize = 32 * 1024
	// MaxFrameLen bounds a single frame's payload length, guarding against
	// a corrupt or malicious length field driving an unbounded allocation.
	MaxFrameLen = 16 * 1024 * 1024
)

// encodeFrameHeader writes a frame header for a payload of length
// payloadLen sent at sendNanos into dst, which must be at least
// [FrameHeaderSize] bytes long.
func encodeFrameHeader(dst []byte, payloadLen int, sendNanos uint64) {
	binary.LittleEndian.PutUint32(dst[0:4], uint32(payloadLen))
	binary.LittleEndian.PutUint64(dst[4:12], sendNanos)
}

// decodeFrameHeader reads a frame header from src, which must be at least
// [FrameHeaderSize] bytes long.
func decodeFrameHeader(src []byte) (payloadLen int, sendNanos uint64) {
	return int(binary.LittleEndian.Uint32(src[0:4])), binary.LittleEndian.Uint64(src[4:12])
}
