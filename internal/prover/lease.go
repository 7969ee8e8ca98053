package prover

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lease claims exclusive ownership of a batch key for the duration a
// single prover run takes, using Redis SETNX-with-TTL — the standard
// single-writer lock primitive so two prover workers never race to claim
// the same Complete batch out of Postgres.
type Lease struct {
	rdb *redis.Client
}

// NewLease connects to addr and verifies connectivity with a ping.
func NewLease(addr, password string, db int) (*Lease, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed (%s): %w", addr, err)
	}
	return &Lease{rdb: rdb}, nil
}

func (l *Lease) Close() error { return l.rdb.Close() }

func leaseKey(sessionID string, startNonce uint64) string {
	return fmt.Sprintf("roguevm:batch-lease:%s:%d", sessionID, startNonce)
}

// Acquire claims the batch (sessionID, startNonce) for ttl, returning
// false without error if another worker already holds it.
func (l *Lease) Acquire(ctx context.Context, sessionID string, startNonce uint64, owner string, ttl time.Duration) (bool, error) {
	return l.rdb.SetNX(ctx, leaseKey(sessionID, startNonce), owner, ttl).Result()
}

// Release drops the lease early, once the prover run finishes.
func (l *Lease) Release(ctx context.Context, sessionID string, startNonce uint64) error {
	return l.rdb.Del(ctx, leaseKey(sessionID, startNonce)).Err()
}
