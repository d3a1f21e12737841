package ioselector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudlink/ioselect/internal/ioselector"
)

func TestEventListGrowReplacesCapacity(t *testing.T) {
	l := ioselector.NewEventList(4)
	require.Equal(t, 4, l.Cap())
	require.Equal(t, 0, l.Len())

	l.Grow(10)
	assert.Equal(t, 10, l.Cap())
	assert.Equal(t, 0, l.Len())
}

func TestTokensAreProcessUniqueAndMonotonic(t *testing.T) {
	a := ioselector.NextToken()
	b := ioselector.NextToken()
	assert.NotEqual(t, a, b)
	assert.Less(t, uint64(a), uint64(b))
}

func TestInterestsHas(t *testing.T) {
	both := ioselector.Readable | ioselector.Writable
	assert.True(t, both.Has(ioselector.Readable))
	assert.True(t, both.Has(ioselector.Writable))
	assert.True(t, ioselector.Readable.Has(ioselector.Readable))
	assert.False(t, ioselector.Readable.Has(ioselector.Writable))
}
