package usecase

import (
	"errors"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/log"
	hcdomain "github.com/x-xyz/treemarket/domain/healthcheck"
)

type impl struct {
	repo hcdomain.HealthCheckRepo
}

func New(repo hcdomain.HealthCheckRepo) hcdomain.HealthCheckUsecase {
	return &impl{repo: repo}
}

func statusOf(c ctx.Ctx, backend string, err error) hcdomain.Status {
	switch {
	case err == nil:
		return hcdomain.StatusUp
	case errors.Is(err, hcdomain.ErrNotConfigured):
		return hcdomain.StatusSkipped
	}
	c.WithFields(log.Fields{"err": err, "backend": backend}).Warn("health probe failed")
	return hcdomain.StatusDown
}

// Check probes every backend, one being down does not skip the others
func (im *impl) Check(c ctx.Ctx) hcdomain.Report {
	return hcdomain.Report{
		Store: statusOf(c, "store", im.repo.PingStore(c)),
		Redis: statusOf(c, "redis", im.repo.PingRedis(c)),
	}
}
