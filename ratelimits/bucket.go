package ratelimits

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const (
	// How many keys a bucket contains when created
	BucketInitialFill = 8

	// The maximum amount of keys a user may possess
	BucketUpperBound = 16

	// How often new keys drip into the buckets
	DropInterval = 10 * time.Second

	// How many keys drop at a time
	DropSize = 1
)

var ErrNoKeys = errors.New("no keys left")

// Container is the bucket container commands drain from
var Container = NewBucketContainer()

// BucketContainer holds one key bucket per user
type BucketContainer struct {
	sync.Mutex

	// Maps discord ids to key-counts
	buckets map[string]int
}

func NewBucketContainer() *BucketContainer {
	return &BucketContainer{buckets: make(map[string]int)}
}

// Run refills the buckets every DropInterval until ctx is done
func (b *BucketContainer) Run(ctx context.Context) {
	ticker := time.NewTicker(DropInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.refill()
		}
	}
}

func (b *BucketContainer) refill() {
	b.Lock()
	defer b.Unlock()
	for user, keys := range b.buckets {
		keys += DropSize
		if keys >= BucketUpperBound {
			// full buckets are dropped, a new one starts full anyway
			delete(b.buckets, user)
			continue
		}
		b.buckets[user] = keys
	}
}

// Drain removes $amount keys from $user, ErrNoKeys if there are not enough left
func (b *BucketContainer) Drain(amount int, user string) error {
	b.Lock()
	defer b.Unlock()

	keys, ok := b.buckets[user]
	if !ok {
		keys = BucketInitialFill
	}
	if amount > keys {
		return ErrNoKeys
	}
	b.buckets[user] = keys - amount
	return nil
}

// HasKeys returns true if $user may run a command
func (b *BucketContainer) HasKeys(user string) bool {
	return b.Get(user) > 0
}

func (b *BucketContainer) Get(user string) int {
	b.Lock()
	defer b.Unlock()

	keys, ok := b.buckets[user]
	if !ok {
		return BucketInitialFill
	}
	return keys
}
