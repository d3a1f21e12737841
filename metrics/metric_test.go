// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

package metrics_test

import (
	"testing"
	"time"

	"github.com/cloudlink/ioselect/metrics"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	metrics.Add(metrics.SelectCalls, 1)
	assert.Equal(t, uint64(1), metrics.Get(metrics.SelectCalls))
	metrics.Add(metrics.SelectCalls, 1)
	assert.Equal(t, uint64(2), metrics.Get(metrics.SelectCalls))

	metrics.Add(metrics.Max+1, 1)
	assert.Equal(t, uint64(0), metrics.Get(metrics.Max+1))
	assert.Equal(t, uint64(0), metrics.Get(-1))

	metrics.Add(metrics.SelectNoWait, 8)
	metrics.Add(metrics.SelectEvents, 99)
	metrics.Add(metrics.SelectInterrupted, 2)
	metrics.Add(metrics.RegisterCalls, 191)
	metrics.Add(metrics.RegisterFails, 3)
	metrics.Add(metrics.CloseLoopCalls, 1)
	metrics.Add(metrics.StreamReadCalls, 5)
	metrics.Add(metrics.StreamReadBytes, 1191)
	metrics.Add(metrics.StreamShortReads, 1)
	metrics.Add(metrics.StreamWriteCalls, 4)
	metrics.Add(metrics.StreamWriteBytes, 512)

	all := metrics.GetAll()
	assert.Equal(t, uint64(2), all[metrics.SelectCalls])

	metrics.ShowMetrics()
	metrics.ShowMetricsOfPeriod(time.Millisecond)
}
