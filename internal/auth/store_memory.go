// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// memoryLockStripes is the number of per-username lock stripes.
const memoryLockStripes = 64

// MemoryOtpRepository implements [OtpRepository] on an in-process ttlcache.
//
// Check-and-consume runs under a lock striped by username, so verifies for
// different users rarely contend.
type MemoryOtpRepository struct {
	cache *ttlcache.Cache[string, OtpChallenge]
	locks [memoryLockStripes]sync.Mutex
}

// NewMemoryOtpRepository creates the store and starts its expiry janitor.
// Call [MemoryOtpRepository.Close] to stop it.
func NewMemoryOtpRepository() *MemoryOtpRepository {
	cache := ttlcache.New(
		ttlcache.WithDisableTouchOnHit[string, OtpChallenge](),
	)

	go cache.Start()

	return &MemoryOtpRepository{cache: cache}
}

// Save implements [OtpRepository].
func (repository *MemoryOtpRepository) Save(_ context.Context, challenge *OtpChallenge, retention time.Duration) error {
	lock := repository.lockFor(challenge.Username)
	lock.Lock()
	defer lock.Unlock()

	repository.cache.Set(challenge.Username, *challenge, retention)
	return nil
}

// Find implements [OtpRepository].
func (repository *MemoryOtpRepository) Find(_ context.Context, username string) (*OtpChallenge, error) {
	item := repository.cache.Get(username)
	if item == nil {
		return nil, ErrChallengeNotFound
	}

	challenge := item.Value()
	return &challenge, nil
}

// ConsumeIf implements [OtpRepository].
func (repository *MemoryOtpRepository) ConsumeIf(_ context.Context, username string, accept ConsumeFunc) (bool, error) {
	lock := repository.lockFor(username)
	lock.Lock()
	defer lock.Unlock()

	item := repository.cache.Get(username)
	if item == nil {
		return false, nil
	}

	challenge := item.Value()
	if !accept(challenge) {
		return false, nil
	}

	challenge.Consumed = true

	remaining := time.Until(item.ExpiresAt())
	if remaining <= 0 {
		remaining = time.Second
	}
	repository.cache.Set(username, challenge, remaining)

	return true, nil
}

// Close stops the expiry janitor.
func (repository *MemoryOtpRepository) Close() {
	repository.cache.Stop()
}

func (repository *MemoryOtpRepository) lockFor(username string) *sync.Mutex {
	hasher := fnv.New32a()
	_, _ = hasher.Write([]byte(username))
	return &repository.locks[hasher.Sum32()%memoryLockStripes]
}
