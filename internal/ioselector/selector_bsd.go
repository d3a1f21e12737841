// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

//go:build freebsd || dragonfly || darwin
// +build freebsd dragonfly darwin

package ioselector

import (
	"os"
	"runtime"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/cloudlink/ioselect/log"
	"github.com/cloudlink/ioselect/metrics"
)

const defaultKeventCap = 64

func newPlatformSelector() (Selector, error) {
	fd, err := unix.Kqueue()
	if err != nil {
		return nil, os.NewSyscallError("kqueue", err)
	}
	if _, err := unix.FcntlInt(uintptr(fd), unix.F_SETFD, unix.FD_CLOEXEC); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	if _, err := unix.Kevent(fd, []unix.Kevent_t{{
		Ident:  0,
		Filter: unix.EVFILT_USER,
		Flags:  unix.EV_ADD | unix.EV_CLEAR,
	}}, nil, nil); err != nil {
		_ = unix.Close(fd)
		return nil, os.NewSyscallError("kevent add|clear", err)
	}
	return &kqueueSelector{fd: fd, raw: make([]unix.Kevent_t, defaultKeventCap)}, nil
}

type kqueueSelector struct {
	fd  int
	raw []unix.Kevent_t
}

// Wake implements Selector.
func (k *kqueueSelector) Wake() error {
	for {
		_, err := unix.Kevent(k.fd, []unix.Kevent_t{{
			Ident:  0,
			Filter: unix.EVFILT_USER,
			Fflags: unix.NOTE_TRIGGER,
		}}, nil, nil)
		switch err {
		case unix.EINTR:
			continue
		case nil, unix.EAGAIN:
			return nil
		default:
			return os.NewSyscallError("kevent", err)
		}
	}
}

// Register implements Selector.
func (k *kqueueSelector) Register(stream Stream, token Token, interests Interests) error {
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
	ev := unix.Kevent_t{
		Ident:  keventIdent(fdr.Fd()),
		Filter: unix.EVFILT_READ,
		Flags:  unix.EV_ADD | unix.EV_ENABLE | unix.EV_ONESHOT,
	}
	*(*uint64)(unsafe.Pointer(&ev.Udata)) = uint64(token)
	if _, err := unix.Kevent(k.fd, []unix.Kevent_t{ev}, nil, nil); err != nil {
		log.Debugf("kevent add err: %v\n", err)
		return errors.Wrap(os.NewSyscallError("kevent add", err), "register stream")
	}
	return nil
}

// Select implements Selector.
func (k *kqueueSelector) Select(events *EventList, timeoutMS int) error {
	events.reset()
	n := events.Cap()
	if cap(k.raw) < n {
		k.raw = make([]unix.Kevent_t, n)
	}
	raw := k.raw[:n]

	var ts unix.Timespec
	var tsp *unix.Timespec
	if timeoutMS >= 0 {
		ts = unix.NsecToTimespec(int64(timeoutMS) * 1e6)
		tsp = &ts
	}

	got, err := unix.Kevent(k.fd, nil, raw, tsp)
	if err != nil {
		if err == unix.EINTR {
			metrics.Add(metrics.SelectInterrupted, 1)
			return ErrInterrupted
		}
		log.Debugf("kevent err: %v\n", err)
		return os.NewSyscallError("kevent", err)
	}
	metrics.Add(metrics.SelectCalls, 1)
	metrics.Add(metrics.SelectEvents, uint64(got))
	for i := 0; i < got; i++ {
		ev := raw[i]
		if ev.Ident == 0 && ev.Filter == unix.EVFILT_USER {
			// Synthetic wake event; EV_CLEAR already reset its state.
			continue
		}
		tok := Token(*(*uint64)(unsafe.Pointer(&ev.Udata)))
		events.push(Event{token: tok})
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
func (k *kqueueSelector) Close() error {
	err := unix.Close(k.fd)
	if err == nil {
		return nil
	}
	wrapped := os.NewSyscallError("close", err)
	if recover() != nil {
		return wrapped
	}
	panic(wrapped)
}
