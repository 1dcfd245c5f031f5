package redis

import (
	"errors"
	"strings"
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/domain/keys"
)

const (
	// Forever stores a key without expiry
	Forever = time.Duration(-1)
)

var (
	// ErrNotFound is returned when the key does not exist
	ErrNotFound = errors.New("redis: key not found")
)

// Service is the subset of redis commands the services rely on
type Service interface {
	Get(c ctx.Ctx, key string) ([]byte, error)
	Set(c ctx.Ctx, key string, val []byte, expire time.Duration) error
	// SetNX reports whether the key was set
	SetNX(c ctx.Ctx, key string, val []byte, expire time.Duration) (bool, error)
	Del(c ctx.Ctx, ks ...string) (int, error)
	// TTL returns Forever for keys without expiry
	TTL(c ctx.Ctx, key string) (time.Duration, error)
	ScriptDo(c ctx.Ctx, hdl *ScriptHdl, keysAndArgs ...interface{}) (interface{}, error)
}

// ScriptHdl is a lua script with a fixed key count
type ScriptHdl struct {
	*redis.Script
	keyCount int
}

// NewScript wraps src for ScriptDo
func NewScript(keyCount int, src string) *ScriptHdl {
	return &ScriptHdl{
		Script:   redis.NewScript(keyCount, src),
		keyCount: keyCount,
	}
}

func (h *ScriptHdl) prefix(keysAndArgs ...interface{}) string {
	if h.keyCount == 0 || len(keysAndArgs) == 0 {
		return ""
	}
	if k, ok := keysAndArgs[0].(string); ok {
		return keys.GetPrefix(strings.Trim(k, "{}"))
	}
	return ""
}
