package healthcheck

import (
	"errors"

	"github.com/x-xyz/treemarket/base/ctx"
)

// ErrNotConfigured is returned by a probe whose backend the process runs without
var ErrNotConfigured = errors.New("not configured")

type Status string

const (
	StatusUp      Status = "up"
	StatusDown    Status = "down"
	StatusSkipped Status = "skipped"
)

// Report covers the backends bids depend on: the store and the redis behind locks and nonces
type Report struct {
	Store Status `json:"store"`
	Redis Status `json:"redis"`
}

func (r Report) Healthy() bool {
	return r.Store != StatusDown && r.Redis != StatusDown
}

type HealthCheckUsecase interface {
	Check(c ctx.Ctx) Report
}

type HealthCheckRepo interface {
	PingStore(c ctx.Ctx) error
	PingRedis(c ctx.Ctx) error
}
