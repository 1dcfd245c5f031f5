package keylock

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/x-xyz/treemarket/base/backoff"
	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/goroutine"
	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/base/metrics"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/keys"
	"github.com/x-xyz/treemarket/service/redis"
)

const (
	defaultTTL        = 30 * time.Second
	retryStart        = 10 * time.Millisecond
	retryLimit        = 200 * time.Millisecond
	defaultAcquireMax = 10 * time.Second
)

// compare-and-delete so an expired holder never releases somebody else's lock
var releaseScript = redis.NewScript(1, `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extends the lease only while the token still owns the key
var extendScript = redis.NewScript(1, `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

type RedisConfig struct {
	// TTL bounds how long a crashed holder blocks the key. A live holder renews the lease every
	// TTL/3 until it unlocks. There is no fencing token: a holder stalled past TTL (gc pause,
	// lost redis connection) can overlap with the next one, and only store-level write
	// conflicts catch that.
	TTL time.Duration
	// AcquireTimeout bounds how long Lock waits when the caller has no deadline
	AcquireTimeout time.Duration
}

type redisImpl struct {
	red redis.Service
	cfg RedisConfig
	met metrics.Service
}

// NewRedis serializes keys across processes with SET NX PX
func NewRedis(red redis.Service, cfg RedisConfig) domain.Locker {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.AcquireTimeout <= 0 {
		cfg.AcquireTimeout = defaultAcquireMax
	}
	return &redisImpl{
		red: red,
		cfg: cfg,
		met: metrics.New("keylock"),
	}
}

func (im *redisImpl) Lock(c ctx.Ctx, key string) (func(), error) {
	defer im.met.BumpTime("acquire.time").End()

	lockKey := keys.RedisKey(keys.PfxLock, key)
	token := uuid.NewString()

	acquireCtx, cancel := ctx.WithTimeout(c, im.cfg.AcquireTimeout)
	defer cancel()

	b := backoff.NewExponential(retryStart, retryLimit)
	err := backoff.Retry(acquireCtx, b, 0, func() error {
		ok, err := im.red.SetNX(acquireCtx, lockKey, []byte(token), im.cfg.TTL)
		if err != nil {
			return err
		}
		if !ok {
			return backoff.ErrRetryLater
		}
		return nil
	})
	if err != nil {
		im.met.BumpSum("acquire.err", 1)
		c.WithFields(log.Fields{"err": err, "key": lockKey, "waits": b.Count()}).Error("failed to acquire lock")
		return nil, err
	}

	stop := make(chan struct{})
	goroutine.RecoverableGo(func() {
		im.renew(ctx.Detach(c), lockKey, token, stop)
	}, goroutine.WithName("keylock-renew"))

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			// release even if the request context is already gone
			rc := ctx.Detach(c)
			if _, err := im.red.ScriptDo(rc, releaseScript, lockKey, token); err != nil {
				rc.WithFields(log.Fields{"err": err, "key": lockKey}).Warn("failed to release lock, it expires with its ttl")
			}
		})
	}, nil
}

func (im *redisImpl) renew(c ctx.Ctx, lockKey, token string, stop <-chan struct{}) {
	every := im.cfg.TTL / 3
	if every < time.Millisecond {
		every = time.Millisecond
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
		}
		n, err := im.red.ScriptDo(c, extendScript, lockKey, token, im.cfg.TTL.Milliseconds())
		if err != nil {
			im.met.BumpSum("renew.err", 1)
			c.WithFields(log.Fields{"err": err, "key": lockKey}).Warn("failed to renew lock")
			continue
		}
		if v, ok := n.(int64); ok && v == 0 {
			im.met.BumpSum("renew.lost", 1)
			c.WithField("key", lockKey).Error("lock lost before unlock")
			return
		}
	}
}
