// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

//go:build windows
// +build windows

package ioselector

import (
	"os"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/cloudlink/ioselect/log"
	"github.com/cloudlink/ioselect/metrics"
)

const defaultEntryCap = 64

func newPlatformSelector() (Selector, error) {
	iocp, err := windows.CreateIoCompletionPort(windows.InvalidHandle, 0, 0, 0)
	if err != nil {
		return nil, os.NewSyscallError("CreateIoCompletionPort", err)
	}
	return &iocpSelector{iocp: iocp, raw: make([]windows.OVERLAPPED_ENTRY, defaultEntryCap)}, nil
}

type iocpSelector struct {
	iocp windows.Handle
	raw  []windows.OVERLAPPED_ENTRY
}

// Wake implements Selector: it posts a completion entry with a nil
// overlapped pointer, which GetQueuedCompletionStatusEx surfaces
// without matching it to any registered stream.
func (s *iocpSelector) Wake() error {
	return windows.PostQueuedCompletionStatus(s.iocp, 0, 0, nil)
}

// Register implements Selector. On the first call for a given stream it
// associates the stream's handle with the IOCP port; every call (first
// or oneshot re-arm) issues a fresh WSARecv tagged with token.
func (s *iocpSelector) Register(stream Stream, token Token, interests Interests) error {
	if interests.Has(Writable) {
		return ErrUnimplemented
	}
	if !interests.Has(Readable) {
		return errors.New("ioselector: interests must request Readable")
	}
	ws, ok := stream.(*WindowsStream)
	if !ok {
		return errors.New("ioselector: stream is not a WindowsStream")
	}
	if ws.associated.CAS(false, true) {
		if _, err := windows.CreateIoCompletionPort(ws.handle, s.iocp, 0, 0); err != nil {
			ws.associated.Store(false)
			log.Debugf("CreateIoCompletionPort err: %v\n", err)
			return errors.Wrap(os.NewSyscallError("CreateIoCompletionPort", err), "associate stream")
		}
	}
	op := &operation{token: token, stream: ws}
	op.buf.Len = uint32(len(ws.rbuf.Bytes()))
	op.buf.Buf = &ws.rbuf.Bytes()[0]
	var flags, bytes uint32
	ws.mu.Lock()
	ws.pending = op
	ws.mu.Unlock()
	err := windows.WSARecv(ws.handle, &op.buf, 1, &bytes, &flags, &op.overlapped, nil)
	if err != nil && err != windows.WSA_IO_PENDING {
		log.Debugf("WSARecv err: %v\n", err)
		return errors.Wrap(os.NewSyscallError("WSARecv", err), "register stream")
	}
	return nil
}

// Select implements Selector.
func (s *iocpSelector) Select(events *EventList, timeoutMS int) error {
	events.reset()
	n := events.Cap()
	if cap(s.raw) < n {
		s.raw = make([]windows.OVERLAPPED_ENTRY, n)
	}
	raw := s.raw[:n]

	var timeout uint32 = windows.INFINITE
	if timeoutMS >= 0 {
		timeout = uint32(timeoutMS)
	}
	var got uint32
	err := windows.GetQueuedCompletionStatusEx(s.iocp, raw, &got, timeout, false)
	if err != nil {
		if err == windows.WAIT_TIMEOUT {
			return nil
		}
		log.Debugf("GetQueuedCompletionStatusEx err: %v\n", err)
		return os.NewSyscallError("GetQueuedCompletionStatusEx", err)
	}
	metrics.Add(metrics.SelectCalls, 1)
	metrics.Add(metrics.SelectEvents, uint64(got))
	for i := uint32(0); i < got; i++ {
		entry := raw[i]
		if entry.Overlapped == nil {
			// Synthetic wake posted by Registrator.CloseLoop.
			continue
		}
		op := operationFromOverlapped(entry.Overlapped)
		op.stream.onComplete(op, uint32(entry.InternalHigh))
		events.push(Event{token: op.token})
		if GoschedAfterEvent {
			runtime.Gosched()
		}
	}
	return nil
}

// Close implements Selector. A close failure panics unless the calling
// goroutine is already unwinding from another panic (e.g. this Close
// ran via a deferred cleanup during a panic elsewhere), in which case
// it returns the wrapped error instead of panicking over it.
func (s *iocpSelector) Close() error {
	err := windows.CloseHandle(s.iocp)
	if err == nil {
		return nil
	}
	wrapped := os.NewSyscallError("CloseHandle", err)
	if recover() != nil {
		return wrapped
	}
	panic(wrapped)
}
