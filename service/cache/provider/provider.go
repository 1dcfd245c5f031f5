package provider

import (
	"errors"
	"time"

	"github.com/x-xyz/treemarket/base/ctx"
)

var ErrNotFound = errors.New("cache miss")

// Provider stores raw bytes. A zero ttl means the entry does not expire; Get reports the
// remaining ttl the same way.
type Provider interface {
	Get(c ctx.Ctx, key string) ([]byte, time.Duration, error)
	Set(c ctx.Ctx, key string, value []byte, ttl time.Duration) error
	Del(c ctx.Ctx, key string) error
}
