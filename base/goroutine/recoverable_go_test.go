package goroutine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecoverableGoHookOrder(t *testing.T) {
	req := require.New(t)
	res := []string{}

	ev := <-RecoverableGo(
		func() {
			res = append(res, "run")
			panic("tracker crashed")
		},
		WithName("tracker"),
		WithBeforeStart(func() { res = append(res, "before") }),
		WithAfterEnded(func() { res = append(res, "ended") }),
		WithAfterRecovered(func(p interface{}, stack []byte) {
			res = append(res, "recovered:"+p.(string))
		}),
	)

	req.Equal([]string{"before", "run", "ended", "recovered:tracker crashed"}, res)
	req.NotNil(ev)
	req.Equal("tracker crashed", ev.Panic)
	req.NotEmpty(ev.Stack)
}

func TestRecoverableGoWithoutPanic(t *testing.T) {
	req := require.New(t)
	ended := false
	ev, ok := <-RecoverableGo(func() {}, WithAfterEnded(func() { ended = true }))
	req.False(ok)
	req.Nil(ev)
	req.True(ended)
}
