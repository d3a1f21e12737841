// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

//go:build linux
// +build linux

package ioselector

import (
	"encoding/binary"
	"os"
	"runtime"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/cloudlink/ioselect/log"
	"github.com/cloudlink/ioselect/metrics"
)

const defaultEventCap = 64

// epollEvent mirrors the kernel's struct epoll_event. Its layout —
// a uint32 Events field, 4 bytes of padding, then an 8-byte Data word
// — is identical across amd64, arm64, loong64 and mipsx, so one
// portable definition covers every architecture without per-arch files.
type epollEvent struct {
	Events uint32
	_      uint32
	Data   uint64
}

const (
	rflags = unix.EPOLLIN | unix.EPOLLONESHOT
)

func newPlatformSelector() (Selector, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, os.NewSyscallError("epoll_create1", err)
	}
	wfd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		_ = unix.Close(fd)
		return nil, os.NewSyscallError("eventfd", err)
	}
	ep := &epollSelector{
		epfd: fd,
		wfd:  wfd,
		raw:  make([]epollEvent, defaultEventCap),
	}
	if err := ep.addWake(); err != nil {
		_ = unix.Close(wfd)
		_ = unix.Close(fd)
		return nil, err
	}
	return ep, nil
}

type epollSelector struct {
	epfd int
	wfd  int
	raw  []epollEvent
}

func epollWait(epfd int, events []epollEvent, msec int) (n int, err error) {
	var r0 uintptr
	p0 := unsafe.Pointer(&events[0])
	if msec == 0 {
		r0, _, err = unix.RawSyscall6(unix.SYS_EPOLL_PWAIT,
			uintptr(epfd), uintptr(p0), uintptr(len(events)), 0, 0, 0)
		metrics.Add(metrics.SelectNoWait, 1)
	} else {
		r0, _, err = unix.Syscall6(unix.SYS_EPOLL_PWAIT,
			uintptr(epfd), uintptr(p0), uintptr(len(events)), uintptr(msec), 0, 0)
	}
	if err == unix.Errno(0) {
		err = nil
	}
	return int(r0), err
}

func epollCtl(epfd, op, fd int, ev *epollEvent) error {
	_, _, err := unix.RawSyscall6(unix.SYS_EPOLL_CTL,
		uintptr(epfd), uintptr(op), uintptr(fd), uintptr(unsafe.Pointer(ev)), 0, 0)
	if err == unix.Errno(0) {
		return nil
	}
	return err
}

func (ep *epollSelector) addWake() error {
	ev := epollEvent{Events: unix.EPOLLIN, Data: uint64(wakeToken)}
	if err := epollCtl(ep.epfd, unix.EPOLL_CTL_ADD, ep.wfd, &ev); err != nil {
		return os.NewSyscallError("epoll_ctl add wake", err)
	}
	return nil
}

func (ep *epollSelector) drainWake() {
	var buf [8]byte
	for {
		if _, err := unix.Read(ep.wfd, buf[:]); err != unix.EINTR {
			return
		}
	}
}

// Wake implements Selector.
func (ep *epollSelector) Wake() error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 1)
	for {
		_, err := unix.Write(ep.wfd, buf[:])
		switch err {
		case unix.EINTR:
			continue
		case nil, unix.EAGAIN:
			return nil
		default:
			return os.NewSyscallError("write", err)
		}
	}
}

// Register implements Selector.
func (ep *epollSelector) Register(stream Stream, token Token, interests Interests) error {
	if interests.Has(Writable) {
		return ErrUnimplemented
	}
	if !interests.Has(Readable) {
		return errors.New("ioselector: interests must request Readable")
	}
	fdr, ok := stream.(interface{ Fd() int })
	if !ok {
		return errors.New("ioselector: stream does not support raw fd registration")
	}
	ev := epollEvent{Events: uint32(rflags), Data: uint64(token)}
	if err := epollCtl(ep.epfd, unix.EPOLL_CTL_ADD, fdr.Fd(), &ev); err != nil {
		if err == unix.EEXIST {
			// Already registered: this is a re-arm after a oneshot
			// fired, which the kernel requires MOD rather than ADD for.
			if err2 := epollCtl(ep.epfd, unix.EPOLL_CTL_MOD, fdr.Fd(), &ev); err2 != nil {
				log.Debugf("epoll_ctl mod err: %v\n", err2)
				return errors.Wrap(os.NewSyscallError("epoll_ctl mod", err2), "re-arm registration")
			}
			return nil
		}
		log.Debugf("epoll_ctl add err: %v\n", err)
		return errors.Wrap(os.NewSyscallError("epoll_ctl add", err), "register stream")
	}
	return nil
}

// Select implements Selector.
func (ep *epollSelector) Select(events *EventList, timeoutMS int) error {
	events.reset()
	n := events.Cap()
	if cap(ep.raw) < n {
		ep.raw = make([]epollEvent, n)
	}
	raw := ep.raw[:n]
	got, err := epollWait(ep.epfd, raw, timeoutMS)
	if err != nil {
		if err == unix.EINTR {
			metrics.Add(metrics.SelectInterrupted, 1)
			return ErrInterrupted
		}
		log.Debugf("epoll_wait err: %v\n", err)
		return os.NewSyscallError("epoll_wait", err)
	}
	metrics.Add(metrics.SelectCalls, 1)
	metrics.Add(metrics.SelectEvents, uint64(got))
	woke := false
	for i := 0; i < got; i++ {
		tok := Token(raw[i].Data)
		if tok == wakeToken {
			woke = true
			continue
		}
		events.push(Event{token: tok})
		if GoschedAfterEvent {
			runtime.Gosched()
		}
	}
	if woke {
		ep.drainWake()
	}
	return nil
}

// Close implements Selector. A close failure panics unless the calling
// goroutine is already unwinding from another panic (e.g. this Close
// ran via a deferred cleanup during a panic elsewhere), in which case
// it returns the wrapped error instead of panicking over it.
func (ep *epollSelector) Close() error {
	err1 := unix.Close(ep.wfd)
	err2 := unix.Close(ep.epfd)
	err := err1
	if err == nil {
		err = err2
	}
	if err == nil {
		return nil
	}
	wrapped := os.NewSyscallError("close", err)
	if recover() != nil {
		return wrapped
	}
	panic(wrapped)
}
