// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/elib/internal/platform/constants"
)

// RedisOtpRepository implements [OtpRepository] using one JSON value per username.
type RedisOtpRepository struct {
	client *redis.Client
}

// NewOtpRepository creates a new Redis-backed OtpRepository.
func NewOtpRepository(client *redis.Client) *RedisOtpRepository {
	return &RedisOtpRepository{client: client}
}

/*
Save stores the challenge, overwriting any previous one for the same username.

Parameters:
  - context: context.Context
  - challenge: *OtpChallenge
  - retention: time.Duration (Redis TTL, garbage collection only)

Returns:
  - error: Encoding or connectivity errors
*/
func (repository *RedisOtpRepository) Save(context context.Context, challenge *OtpChallenge, retention time.Duration) error {
	payload, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("redis_otp_encode_failed: %w", err)
	}

	// Plain SET: concurrent issues for one username resolve as last write wins
	if err := repository.client.Set(context, otpKey(challenge.Username), payload, retention).Err(); err != nil {
		return fmt.Errorf("redis_otp_set_failed: %w", err)
	}

	return nil
}

/*
Find retrieves the stored challenge for a username.

Returns:
  - *OtpChallenge: The stored challenge, consumed or not
  - error: ErrChallengeNotFound or connectivity errors
*/
func (repository *RedisOtpRepository) Find(context context.Context, username string) (*OtpChallenge, error) {
	payload, err := repository.client.Get(context, otpKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("redis_otp_get_failed: %w", err)
	}

	return decodeChallenge(payload)
}

/*
ConsumeIf marks the challenge consumed under optimistic locking.

Description: The key is WATCHed, loaded and judged by accept. The consumed
flag is written in a MULTI block that fails if another client touched the key
in between, in which case the whole step is retried. Two concurrent verifies
of the same code therefore cannot both succeed.

Returns:
  - bool: true if this call consumed the challenge
  - error: Connectivity errors, or ErrConsumeContention once retries run out
*/
func (repository *RedisOtpRepository) ConsumeIf(context context.Context, username string, accept ConsumeFunc) (bool, error) {
	key := otpKey(username)

	for attempt := 0; attempt < maxConsumeRetries; attempt++ {
		consumed := false

		err := repository.client.Watch(context, func(tx *redis.Tx) error {
			payload, err := tx.Get(context, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return nil
			}
			if err != nil {
				return err
			}

			challenge, err := decodeChallenge(payload)
			if err != nil {
				return err
			}

			if !accept(*challenge) {
				return nil
			}

			challenge.Consumed = true
			updated, err := json.Marshal(challenge)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(context, func(pipe redis.Pipeliner) error {
				pipe.Set(context, key, updated, redis.KeepTTL)
				return nil
			})
			if err != nil {
				return err
			}

			consumed = true
			return nil
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("redis_otp_consume_failed: %w", err)
		}

		return consumed, nil
	}

	return false, fmt.Errorf("%w: %d attempts", ErrConsumeContention, maxConsumeRetries)
}

// otpKey builds the Redis key of a username's challenge.
func otpKey(username string) string {
	return constants.RedisPrefixOtp + username
}

func decodeChallenge(payload []byte) (*OtpChallenge, error) {
	challenge := &OtpChallenge{}
	if err := json.Unmarshal(payload, challenge); err != nil {
		return nil, fmt.Errorf("redis_otp_decode_failed: %w", err)
	}
	return challenge, nil
}
