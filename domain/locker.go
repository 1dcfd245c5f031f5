package domain

import "github.com/x-xyz/treemarket/base/ctx"

// Locker hands out mutual exclusion per key. Lock blocks until the key is free or c is done;
// the returned func releases it.
type Locker interface {
	Lock(c ctx.Ctx, key string) (unlock func(), err error)
}
