// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

// Package ioselector implements the per-platform readiness/completion
// selector that backs the public Poll/Registrator/TcpStream types: one
// epoll-based selector on Linux, one kqueue-based selector on BSD/macOS,
// and one IOCP-based selector on Windows, all satisfying the Selector
// interface declared here.
package ioselector

import (
	"errors"

	"go.uber.org/atomic"
)

// Token identifies one registration. It is process-unique and allocated
// from a single monotonically increasing counter, matching the single
// shared atomic token source every platform selector correlates events
// against.
type Token uint64

var tokenCounter atomic.Uint64

// NextToken allocates a new process-unique token.
func NextToken() Token {
	return Token(tokenCounter.Add(1))
}

// wakeToken is reserved for the synthetic wake event CloseLoop posts; it
// is never handed out by NextToken, which starts counting at 1.
const wakeToken Token = 0

// Interests is a bitset of the readiness conditions a registration cares
// about.
type Interests uint8

// Readable and Writable are the two bits Interests can combine. Only
// Readable is implemented by this core; a Register call that includes
// Writable fails with ErrUnimplemented (see spec §3).
const (
	Readable Interests = 1 << iota
	Writable
)

// Has reports whether i includes every bit set in want.
func (i Interests) Has(want Interests) bool {
	return i&want == want
}

// Error taxonomy (spec §7).
var (
	// ErrInterrupted is returned when poll_dead is set or the
	// underlying syscall was interrupted (EINTR or platform
	// equivalent). Callers of Poll/Select should retry on the
	// syscall-interrupted case; callers of Register/CloseLoop should
	// treat a poll_dead interruption as terminal.
	ErrInterrupted = errors.New("ioselector: interrupted")

	// ErrUnimplemented is returned for registrations that request
	// Writable interest, which this core does not support.
	ErrUnimplemented = errors.New("ioselector: unimplemented")
)
