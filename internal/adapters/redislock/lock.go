package redislock

// lock.go — distributed session lease on Redis, for deployments where
// scheduled triggers can fire on more than one host. SETNX with a TTL takes
// the lease; a Lua script releases it only if the caller still owns it, so
// one holder can never free another holder's lease.

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/alejandrodnm/aitrader/internal/domain"
	"github.com/alejandrodnm/aitrader/internal/ports"
)

const unlockLua = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`

// Lock implements ports.SessionLock using Redis.
type Lock struct {
	rdb      *redis.Client
	key      string
	unlockSc *redis.Script
}

// New creates a Lock on the given Redis address. The key names the portfolio
// the lease protects.
func New(addr, key string) *Lock {
	return &Lock{
		rdb:      redis.NewClient(&redis.Options{Addr: addr}),
		key:      "lease:" + key,
		unlockSc: redis.NewScript(unlockLua),
	}
}

// Acquire takes the session lease with the given TTL. It returns
// domain.ErrLeaseHeld while another session holds it.
func (l *Lock) Acquire(ctx context.Context, ttl time.Duration) (func(), error) {
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, l.key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redislock.Acquire: %s: %w", l.key, err)
	}
	if !ok {
		return nil, domain.ErrLeaseHeld
	}

	released := false
	release := func() {
		if released {
			return
		}
		released = true

		relCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = l.unlockSc.Run(relCtx, l.rdb, []string{l.key}, token).Err()
	}
	return release, nil
}

// Compile-time interface check.
var _ ports.SessionLock = (*Lock)(nil)
