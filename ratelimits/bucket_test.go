package ratelimits

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBucketDrain(t *testing.T) {
	container := NewBucketContainer()

	assert.True(t, container.HasKeys("u1"))
	for i := 0; i < BucketInitialFill; i++ {
		assert.NoError(t, container.Drain(1, "u1"))
	}
	assert.Equal(t, ErrNoKeys, container.Drain(1, "u1"))
	assert.False(t, container.HasKeys("u1"))
	assert.Equal(t, BucketInitialFill, container.Get("u2"))
}

func TestBucketRefill(t *testing.T) {
	container := NewBucketContainer()
	assert.NoError(t, container.Drain(BucketInitialFill, "u1"))

	container.refill()
	assert.Equal(t, DropSize, container.Get("u1"))

	for i := 0; i < BucketUpperBound; i++ {
		container.refill()
	}
	assert.Equal(t, BucketInitialFill, container.Get("u1"))
}
