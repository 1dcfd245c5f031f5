package primitive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/service/cache/provider"
)

func TestPrimitive(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	p := NewPrimitive("asset", 1)

	_, _, err := p.Get(c, "kind:0xabc")
	req.ErrorIs(err, provider.ErrNotFound)

	req.NoError(p.Set(c, "kind:0xabc", []byte("721"), time.Minute))
	v, ttl, err := p.Get(c, "kind:0xabc")
	req.NoError(err)
	req.Equal("721", string(v))
	req.True(ttl > 0 && ttl <= time.Minute)

	req.NoError(p.Del(c, "kind:0xabc"))
	_, _, err = p.Get(c, "kind:0xabc")
	req.ErrorIs(err, provider.ErrNotFound)
}

func TestPrimitiveExpiry(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	p := NewPrimitive("asset", 1)

	req.NoError(p.Set(c, "short", []byte("x"), time.Second))
	req.NoError(p.Set(c, "forever", []byte("y"), 0))
	time.Sleep(time.Second + 100*time.Millisecond)

	_, _, err := p.Get(c, "short")
	req.ErrorIs(err, provider.ErrNotFound)
	_, ttl, err := p.Get(c, "forever")
	req.NoError(err)
	req.Equal(time.Duration(0), ttl)
}
