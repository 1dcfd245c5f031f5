package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/database/mongoclient"
	hcdomain "github.com/x-xyz/treemarket/domain/healthcheck"
	"github.com/x-xyz/treemarket/domain/keys"
	"github.com/x-xyz/treemarket/service/redis"
)

const pingTimeout = 2 * time.Second

type impl struct {
	mongo *mongoclient.Client
	redis redis.Service
}

// New takes the backends the process was started with, nil for the ones it runs without
func New(mongo *mongoclient.Client, red redis.Service) hcdomain.HealthCheckRepo {
	return &impl{mongo: mongo, redis: red}
}

func (im *impl) PingStore(c ctx.Ctx) error {
	if im.mongo == nil {
		return hcdomain.ErrNotConfigured
	}
	tCtx, cancel := ctx.WithTimeout(c, pingTimeout)
	defer cancel()
	return im.mongo.Ping(tCtx, readpref.Primary())
}

// PingRedis writes rather than pings so a read-only replica reports down
func (im *impl) PingRedis(c ctx.Ctx) error {
	if im.redis == nil {
		return hcdomain.ErrNotConfigured
	}
	tCtx, cancel := ctx.WithTimeout(c, pingTimeout)
	defer cancel()
	return im.redis.Set(tCtx, keys.RedisKey(keys.PfxHealthCheck, "probe"), []byte("1"), 30*time.Second)
}
