// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

package buffer

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedReadBuffer_Read(t *testing.T) {
	tests := []struct {
		name        string
		fill        []byte
		readSize    int
		expected    []byte
		expectN     int
		expectError error
	}{
		{
			name:     "read exactly what was filled",
			fill:     []byte("hello"),
			readSize: 5,
			expected: []byte("hello"),
			expectN:  5,
		},
		{
			name:     "short read when request exceeds available",
			fill:     []byte("hi"),
			readSize: 5,
			expected: []byte("hi"),
			expectN:  2,
		},
		{
			name:     "partial read leaves remainder for next call",
			fill:     []byte("abcdef"),
			readSize: 3,
			expected: []byte("abc"),
			expectN:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(16)
			copy(b.Bytes(), tt.fill)
			b.Fill(len(tt.fill))

			got := make([]byte, tt.readSize)
			n, err := b.Read(got)
			assert.Equal(t, tt.expectN, n)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got[:n])
		})
	}
}

func TestFixedReadBuffer_ReadEmptyReturnsEOF(t *testing.T) {
	b := New(16)
	n, err := b.Read(make([]byte, 4))
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)
}

func TestFixedReadBuffer_CursorAdvancesAcrossReads(t *testing.T) {
	b := New(16)
	copy(b.Bytes(), []byte("abcdef"))
	b.Fill(6)

	first := make([]byte, 2)
	n, err := b.Read(first)
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, b.CurPos())
	assert.Equal(t, 4, b.LenRead())

	second := make([]byte, 10)
	n, err = b.Read(second)
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte("cdef"), second[:n])
	assert.Equal(t, 0, b.LenRead())
}

func TestFixedReadBuffer_Skip(t *testing.T) {
	b := New(16)
	copy(b.Bytes(), []byte("abcdef"))
	b.Fill(6)

	assert.NoError(t, b.Skip(2))
	assert.Equal(t, 2, b.CurPos())
	assert.Equal(t, 4, b.LenRead())

	assert.Equal(t, ErrInvalidParam, b.Skip(-1))
	assert.Equal(t, io.EOF, b.Skip(100))
}

func TestFixedReadBuffer_ResetAndRefill(t *testing.T) {
	b := New(8)
	copy(b.Bytes(), []byte("xy"))
	b.Fill(2)
	_, _ = b.Read(make([]byte, 2))
	assert.Equal(t, 0, b.LenRead())

	b.Reset()
	assert.Equal(t, 0, b.CurPos())
	assert.Equal(t, 0, b.LenRead())

	copy(b.Bytes(), []byte("z"))
	b.Fill(1)
	assert.Equal(t, 1, b.LenRead())
}
