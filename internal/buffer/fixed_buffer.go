// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

// Package buffer provides a fixed size receive buffer with a stable backing
// array, used to back the kernel-lent WSARecv buffer on completion-based
// platforms.
package buffer

import (
	"errors"
	"io"

	"go.uber.org/atomic"
)

// ErrInvalidParam denotes that param is invalid.
var ErrInvalidParam = errors.New("buffer: param is invalid")

// FixedReadBuffer is a fixed-capacity buffer whose backing array address
// never changes after New, so it is safe to lend to the kernel across an
// in-flight completion-based read. Each cursor field is updated
// atomically, but Read, Skip, Fill and Reset are not atomic as a whole:
// two concurrent Reads can copy the same bytes, so these methods are not
// safe to call concurrently with each other. The backing array itself
// must not be written to concurrently with a pending WSARecv.
type FixedReadBuffer struct {
	buf  []byte
	rlen atomic.Uint32
	pos  atomic.Uint32
}

// New allocates a FixedReadBuffer with the given fixed capacity. The
// returned buffer's backing array address is stable for the buffer's
// lifetime.
func New(capacity int) *FixedReadBuffer {
	return &FixedReadBuffer{buf: make([]byte, capacity)}
}

// Bytes returns the full backing array, for handing to WSARecv. Callers
// must not invoke this while a read is pending against the same buffer.
func (b *FixedReadBuffer) Bytes() []byte {
	return b.buf
}

// Fill marks the first n bytes of the backing array as unread and resets
// the read cursor to zero. Called once a WSARecv completion reports n
// bytes transferred.
func (b *FixedReadBuffer) Fill(n int) {
	b.pos.Store(0)
	b.rlen.Store(uint32(n))
}

// Reset marks the buffer empty.
func (b *FixedReadBuffer) Reset() {
	b.pos.Store(0)
	b.rlen.Store(0)
}

// Read copies min(len(p), LenRead()) bytes into p and advances the read
// cursor by that amount.
func (b *FixedReadBuffer) Read(p []byte) (int, error) {
	n := len(p)
	if n == 0 {
		return 0, nil
	}

	rlen := b.LenRead()
	if rlen == 0 {
		return 0, io.EOF
	}
	if rlen < n {
		n = rlen
	}

	curPos := b.CurPos()
	copy(p, b.buf[curPos:curPos+n])

	b.pos.Add(uint32(n))
	b.rlen.Sub(uint32(n))
	return n, nil
}

// Skip discards the next n unread bytes without copying them.
func (b *FixedReadBuffer) Skip(n int) error {
	if n < 0 {
		return ErrInvalidParam
	}
	if n == 0 {
		return nil
	}

	rlen := b.LenRead()
	if rlen < n {
		return io.EOF
	}

	b.pos.Add(uint32(n))
	b.rlen.Sub(uint32(n))
	return nil
}

// LenRead returns the number of unread bytes left in the buffer.
func (b *FixedReadBuffer) LenRead() int {
	return int(b.rlen.Load())
}

// CurPos returns the current read cursor offset into the backing array.
func (b *FixedReadBuffer) CurPos() int {
	return int(b.pos.Load())
}
