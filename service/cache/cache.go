// Package cache layers typed values over a byte provider. Values are json encoded unless a
// Codec is given.
package cache

import (
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/domain/keys"
	"github.com/x-xyz/treemarket/service/cache/provider"
)

// ErrNotFound is the provider miss, re-exported so callers only import this package
var ErrNotFound = provider.ErrNotFound

// Loader fills a miss. It must return a pointer to the container's type.
type Loader func() (interface{}, error)

type Codec interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }

type Service interface {
	// Load reads key into container, calling loader and storing its result on a miss.
	// A loader error is returned as is and nothing is stored.
	Load(c ctx.Ctx, key string, container interface{}, loader Loader) error
	Get(c ctx.Ctx, key string, container interface{}) error
	Set(c ctx.Ctx, key string, value interface{}) error
	Del(c ctx.Ctx, key string) error
}

type ServiceConfig struct {
	Ttl   time.Duration
	Pfx   string
	Cache provider.Provider
	Codec Codec
}

type impl struct {
	ttl   time.Duration
	pfx   string
	cache provider.Provider
	codec Codec
}

func New(cfg ServiceConfig) Service {
	im := &impl{ttl: cfg.Ttl, pfx: cfg.Pfx, cache: cfg.Cache, codec: cfg.Codec}
	if im.codec == nil {
		im.codec = jsonCodec{}
	}
	return im
}

func (im *impl) key(k string) string {
	return keys.RedisKey(im.pfx, k)
}

func (im *impl) Load(c ctx.Ctx, key string, container interface{}, loader Loader) error {
	err := im.Get(c, key, container)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return err
	}

	val, err := loader()
	if err != nil {
		return err
	}
	if err := im.Set(c, key, val); err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Warn("failed to fill cache")
	}
	reflect.ValueOf(container).Elem().Set(reflect.ValueOf(val).Elem())
	return nil
}

func (im *impl) Get(c ctx.Ctx, key string, container interface{}) error {
	raw, _, err := im.cache.Get(c, im.key(key))
	if errors.Is(err, provider.ErrNotFound) {
		return ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("failed to cache.Get")
		return err
	}
	if err := im.codec.Unmarshal(raw, container); err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("failed to decode cached value")
		return err
	}
	return nil
}

func (im *impl) Set(c ctx.Ctx, key string, value interface{}) error {
	raw, err := im.codec.Marshal(value)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("failed to encode value")
		return err
	}
	return im.cache.Set(c, im.key(key), raw, im.ttl)
}

func (im *impl) Del(c ctx.Ctx, key string) error {
	return im.cache.Del(c, im.key(key))
}
