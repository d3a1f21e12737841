// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

//go:build windows
// +build windows

package ioselector

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// operation is the inline record a WSARecv is issued with. The embedded
// windows.Overlapped MUST stay the first field: GetQueuedCompletionStatusEx
// hands back a *windows.Overlapped pointing at this same memory, and
// Select recovers the owning operation (and its token) with a bare
// pointer cast, relying on field 0 sharing operation's own address.
type operation struct {
	overlapped windows.Overlapped
	token      Token
	buf        windows.WSABuf
	stream     *WindowsStream
}

func operationFromOverlapped(o *windows.Overlapped) *operation {
	return (*operation)(unsafe.Pointer(o))
}
