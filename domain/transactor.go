package domain

import "github.com/x-xyz/treemarket/base/ctx"

// Transactor runs fn atomically. Repositories called with the ctx handed to fn take part in
// the same transaction.
type Transactor interface {
	RunWithTransaction(ctx.Ctx, func(ctx.Ctx) error) error
}
