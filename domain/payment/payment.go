package payment

import (
	"math/big"
	"time"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/domain"
)

// Account is a native-currency balance in base units
type Account struct {
	Address   domain.Address `json:"address" bson:"address"`
	Balance   string         `json:"balance" bson:"balance"`
	UpdatedAt time.Time      `json:"updatedAt" bson:"updatedAt"`
}

func (a *Account) BalanceInt() *big.Int {
	n, ok := new(big.Int).SetString(a.Balance, 10)
	if !ok {
		return new(big.Int)
	}
	return n
}

type Repo interface {
	FindOne(c ctx.Ctx, address domain.Address) (*Account, error)
	Upsert(c ctx.Ctx, a *Account) error
}

// Rail moves native currency. Either the transfer lands or an error wrapping
// domain.ErrTransferFailed is returned.
type Rail interface {
	Collect(c ctx.Ctx, from domain.Address, amount *big.Int) error
	Pay(c ctx.Ctx, to domain.Address, amount *big.Int) error
}

type UseCase interface {
	Rail

	Deposit(c ctx.Ctx, to domain.Address, amount *big.Int) (*Account, error)
	Withdraw(c ctx.Ctx, from domain.Address, amount *big.Int) (*Account, error)
	Balance(c ctx.Ctx, address domain.Address) (*big.Int, error)
}
