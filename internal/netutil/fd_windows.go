// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 Tencent.
// All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

package netutil

import (
	"errors"
	"fmt"
	"syscall"

	"golang.org/x/sys/windows"
)

// GetHandle returns the native socket handle backing socket, for
// association with an I/O completion port.
func GetHandle(socket interface{}) (windows.Handle, error) {
	conn, ok := socket.(syscall.Conn)
	if !ok {
		return windows.InvalidHandle, fmt.Errorf("type %T doesn't implement syscall.Conn interface", socket)
	}
	rawConn, err := conn.SyscallConn()
	if err != nil {
		return windows.InvalidHandle, fmt.Errorf("get raw connection fail %w", err)
	}

	h := windows.InvalidHandle
	op := func(sysfd uintptr) {
		h = windows.Handle(sysfd)
	}
	if err := rawConn.Control(op); err != nil {
		return windows.InvalidHandle, err
	}
	if h == windows.InvalidHandle {
		return windows.InvalidHandle, errors.New("invalid socket handle")
	}
	return h, nil
}
