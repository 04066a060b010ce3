// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/elib/internal/platform/constants"
	"github.com/taibuivan/elib/pkg/clock"
)

func newTestRedisOtpRepository(t *testing.T) (*RedisOtpRepository, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewOtpRepository(client), server
}

func newRedisOtpManager(t *testing.T) (*OtpManager, *miniredis.Miniredis, *clock.Fake) {
	t.Helper()

	repository, server := newTestRedisOtpRepository(t)
	clk := clock.NewFake(otpEpoch)

	manager := NewOtpManager(repository, &recordingSender{}, clk, OtpConfig{
		TTL:             5 * time.Minute,
		Length:          6,
		DeliveryTimeout: time.Second,
	})
	manager.generate = fixedCodes("483921", "112233")
	return manager, server, clk
}

/*
TestRedisOtpRepository_SaveAndFind covers retention TTL, replacement and misses.
*/
func TestRedisOtpRepository_SaveAndFind(t *testing.T) {
	repository, server := newTestRedisOtpRepository(t)
	ctx := context.Background()

	_, err := repository.Find(ctx, "alice")
	assert.ErrorIs(t, err, ErrChallengeNotFound)

	first := &OtpChallenge{Username: "alice", Code: "111111", IssuedAt: otpEpoch, ExpiresAt: otpEpoch.Add(5 * time.Minute)}
	require.NoError(t, repository.Save(ctx, first, 6*time.Minute))
	assert.Equal(t, 6*time.Minute, server.TTL(constants.RedisPrefixOtp+"alice"))

	// Last write wins.
	second := &OtpChallenge{Username: "alice", Code: "222222", IssuedAt: otpEpoch, ExpiresAt: otpEpoch.Add(5 * time.Minute)}
	require.NoError(t, repository.Save(ctx, second, 6*time.Minute))

	stored, err := repository.Find(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "222222", stored.Code)
	assert.False(t, stored.Consumed)
	assert.True(t, stored.ExpiresAt.Equal(second.ExpiresAt))

	// The storage TTL only collects garbage.
	server.FastForward(6*time.Minute + time.Second)
	_, err = repository.Find(ctx, "alice")
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

/*
TestRedisOtpRepository_ConsumeIf checks the consumed flag, replay rejection
and that the remaining TTL survives the consume write.
*/
func TestRedisOtpRepository_ConsumeIf(t *testing.T) {
	repository, server := newTestRedisOtpRepository(t)
	ctx := context.Background()
	key := constants.RedisPrefixOtp + "alice"

	challenge := &OtpChallenge{Username: "alice", Code: "483921", IssuedAt: otpEpoch, ExpiresAt: otpEpoch.Add(5 * time.Minute)}
	require.NoError(t, repository.Save(ctx, challenge, 6*time.Minute))
	server.FastForward(time.Minute)

	refused, err := repository.ConsumeIf(ctx, "alice", func(OtpChallenge) bool { return false })
	require.NoError(t, err)
	assert.False(t, refused)

	consumed, err := repository.ConsumeIf(ctx, "alice", func(loaded OtpChallenge) bool {
		return !loaded.Consumed && loaded.Code == "483921"
	})
	require.NoError(t, err)
	assert.True(t, consumed)
	assert.Equal(t, 5*time.Minute, server.TTL(key))

	stored, err := repository.Find(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, stored.Consumed)

	replayed, err := repository.ConsumeIf(ctx, "alice", func(loaded OtpChallenge) bool { return !loaded.Consumed })
	require.NoError(t, err)
	assert.False(t, replayed)
}

/*
TestRedisOtpRepository_ConsumeMissing verifies accept is never called without a challenge.
*/
func TestRedisOtpRepository_ConsumeMissing(t *testing.T) {
	repository, _ := newTestRedisOtpRepository(t)

	called := false
	consumed, err := repository.ConsumeIf(context.Background(), "ghost", func(OtpChallenge) bool {
		called = true
		return true
	})
	require.NoError(t, err)
	assert.False(t, consumed)
	assert.False(t, called)
}

/*
TestRedisOtpRepository_ConsumeUnreachable checks connectivity errors surface.
*/
func TestRedisOtpRepository_ConsumeUnreachable(t *testing.T) {
	repository, server := newTestRedisOtpRepository(t)
	server.Close()

	_, err := repository.ConsumeIf(context.Background(), "alice", func(OtpChallenge) bool { return true })
	assert.ErrorContains(t, err, "redis_otp_consume_failed")
	assert.NotErrorIs(t, err, ErrConsumeContention)
}

/*
TestOtpManager_RedisStore runs issue, replacement and expiry against Redis.
*/
func TestOtpManager_RedisStore(t *testing.T) {
	manager, server, clk := newRedisOtpManager(t)
	ctx := context.Background()

	_, err := manager.Issue(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute+otpRetentionGrace, server.TTL(constants.RedisPrefixOtp+"alice"))

	// A second login replaces the first code.
	_, err = manager.Issue(ctx, alice)
	require.NoError(t, err)

	valid, err := manager.Validate(ctx, "alice", "483921")
	require.NoError(t, err)
	assert.False(t, valid)

	// Expiry follows the injected clock, not the Redis TTL.
	clk.Advance(5*time.Minute + time.Second)
	valid, err = manager.Validate(ctx, "alice", "112233")
	require.NoError(t, err)
	assert.False(t, valid)
}

/*
TestOtpManager_RedisConcurrentValidate checks 32 simultaneous verifies of one
code produce exactly one success and no errors.
*/
func TestOtpManager_RedisConcurrentValidate(t *testing.T) {
	manager, server, _ := newRedisOtpManager(t)
	ctx := context.Background()

	_, err := manager.Issue(ctx, alice)
	require.NoError(t, err)

	var successes, failures atomic.Int32
	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			valid, err := manager.Validate(ctx, "alice", "483921")
			if err != nil {
				failures.Add(1)
				return
			}
			if valid {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, successes.Load())
	assert.EqualValues(t, 0, failures.Load())
	assert.Equal(t, 5*time.Minute+otpRetentionGrace, server.TTL(constants.RedisPrefixOtp+"alice"))

	replayed, err := manager.Validate(ctx, "alice", "483921")
	require.NoError(t, err)
	assert.False(t, replayed)
}
