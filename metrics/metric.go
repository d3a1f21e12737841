//
//
// Tencent is pleased to support the open source community by making tRPC available.
//
// Copyright (C) 2023 THL A29 Limited, a Tencent company.
// All rights reserved.
//
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the  Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.
//
//

// Package metrics provides runtime monitoring counters for the selector,
// registration and stream paths, useful for diagnosing how much work a
// poll loop is doing per wakeup.
package metrics

import (
	"fmt"
	"time"

	"go.uber.org/atomic"
)

// All metrics definitions.
const (
	// Selector metrics.
	SelectCalls = iota
	SelectNoWait
	SelectEvents
	SelectInterrupted

	// Registration metrics.
	RegisterCalls
	RegisterFails
	CloseLoopCalls

	// Stream metrics.
	StreamReadCalls
	StreamReadBytes
	StreamShortReads
	StreamWriteCalls
	StreamWriteBytes

	Max
)

var counters [Max]atomic.Uint64

// Add increments metrics counter name by delta.
func Add(name int, delta uint64) {
	if name < 0 || name >= Max {
		return
	}
	counters[name].Add(delta)
}

// Get returns one metric counter.
func Get(name int) uint64 {
	if name < 0 || name >= Max {
		return 0
	}
	return counters[name].Load()
}

// GetAll returns all metric counters.
func GetAll() [Max]uint64 {
	var m [Max]uint64
	for i := range counters {
		m[i] = counters[i].Load()
	}
	return m
}

// ShowMetricsOfPeriod shows metric info accumulated over duration d from
// now on. It blocks for d before printing.
func ShowMetricsOfPeriod(d time.Duration) {
	old := GetAll()
	<-time.After(d)
	latest := GetAll()
	var m [Max]uint64
	for i := range counters {
		m[i] = latest[i] - old[i]
	}
	showAll(m)
}

// ShowMetrics prints the current metric counters to stdout.
func ShowMetrics() {
	showAll(GetAll())
}

func showAll(m [Max]uint64) {
	fmt.Println("######### ioselect metrics (", time.Now().Format("2006-01-02 15:04:05"), ") ###########")
	showSelectorMetrics(m)
	showStreamMetrics(m)
	fmt.Printf("\n")
}

func showSelectorMetrics(m [Max]uint64) {
	fmt.Printf("%-59s: %d\n", "# selector - number of Select returns", m[SelectCalls])
	fmt.Printf("%-59s: %d\n", "# selector - number of Select called with timeout=0", m[SelectNoWait])
	fmt.Printf("%-59s: %d\n", "# selector - number of total events", m[SelectEvents])
	fmt.Printf("%-59s: %d\n", "# selector - number of EINTR retries", m[SelectInterrupted])
	if m[SelectCalls] > 0 {
		fmt.Printf("%-59s: %.2f\n", "# selector - average events per Select",
			float64(m[SelectEvents])/float64(m[SelectCalls]))
	}
	fmt.Printf("%-59s: %d\n", "# registrator - number of Register calls", m[RegisterCalls])
	fmt.Printf("%-59s: %d\n", "# registrator - number of failed Register calls", m[RegisterFails])
	fmt.Printf("%-59s: %d\n", "# registrator - number of CloseLoop calls", m[CloseLoopCalls])
}

func showStreamMetrics(m [Max]uint64) {
	fmt.Printf("%-59s: %d\n", "# stream - number of Read calls", m[StreamReadCalls])
	fmt.Printf("%-59s: %d\n", "# stream - number of bytes read", m[StreamReadBytes])
	fmt.Printf("%-59s: %d\n", "# stream - number of short reads (IOCP)", m[StreamShortReads])
	fmt.Printf("%-59s: %d\n", "# stream - number of Write calls", m[StreamWriteCalls])
	fmt.Printf("%-59s: %d\n", "# stream - number of bytes written", m[StreamWriteBytes])
}
