package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/domain/keys"
	"github.com/x-xyz/treemarket/service/cache/provider"
	"github.com/x-xyz/treemarket/service/cache/provider/primitive"
)

type kindEntry struct {
	Kind int `json:"kind"`
}

type cacheSuite struct {
	suite.Suite

	layer provider.Provider
	svc   Service
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(cacheSuite))
}

func (s *cacheSuite) SetupTest() {
	s.layer = primitive.NewPrimitive("test", 1)
	s.svc = New(ServiceConfig{Ttl: time.Second, Pfx: keys.PfxAssetKind, Cache: s.layer})
}

func (s *cacheSuite) TestSetThenGet() {
	c := ctx.Background()
	got := kindEntry{}
	s.ErrorIs(s.svc.Get(c, "0xabc", &got), ErrNotFound)

	s.Require().NoError(s.svc.Set(c, "0xabc", kindEntry{721}))
	s.NoError(s.svc.Get(c, "0xabc", &got))
	s.Equal(721, got.Kind)

	raw, _, err := s.layer.Get(c, keys.RedisKey(keys.PfxAssetKind, "0xabc"))
	s.NoError(err)
	s.JSONEq(`{"kind":721}`, string(raw))

	s.NoError(s.svc.Del(c, "0xabc"))
	s.ErrorIs(s.svc.Get(c, "0xabc", &got), ErrNotFound)
}

func (s *cacheSuite) TestExpires() {
	c := ctx.Background()
	s.Require().NoError(s.svc.Set(c, "0xabc", kindEntry{1155}))
	time.Sleep(time.Second + 100*time.Millisecond)
	s.ErrorIs(s.svc.Get(c, "0xabc", &kindEntry{}), ErrNotFound)
}

func (s *cacheSuite) TestLoadOnce() {
	calls := 0
	loader := func() (interface{}, error) {
		calls++
		return &kindEntry{721}, nil
	}

	for i := 0; i < 3; i++ {
		got := kindEntry{}
		s.NoError(s.svc.Load(ctx.Background(), "0xabc", &got, loader))
		s.Equal(721, got.Kind)
	}
	s.Equal(1, calls)
}

func (s *cacheSuite) TestLoadErrorNotStored() {
	boom := errors.New("boom")
	err := s.svc.Load(ctx.Background(), "0xdef", &kindEntry{}, func() (interface{}, error) {
		return nil, boom
	})
	s.Equal(boom, err)
	s.ErrorIs(s.svc.Get(ctx.Background(), "0xdef", &kindEntry{}), ErrNotFound)
}
