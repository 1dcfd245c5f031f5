package escrow

import (
	"math/big"
	"time"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/domain"
)

// Entry is the amount held for the active bid on one token
type Entry struct {
	Contract  domain.Address `json:"contract" bson:"contract"`
	TokenId   domain.TokenId `json:"tokenId" bson:"tokenId"`
	Depositor domain.Address `json:"depositor" bson:"depositor"`
	Amount    string         `json:"amount" bson:"amount"`
	CreatedAt time.Time      `json:"createdAt" bson:"createdAt"`
}

func (e *Entry) Key() domain.AssetKey {
	return domain.NewAssetKey(e.Contract, e.TokenId)
}

func (e *Entry) AmountInt() *big.Int {
	n, ok := new(big.Int).SetString(e.Amount, 10)
	if !ok {
		return new(big.Int)
	}
	return n
}

type Payout struct {
	To     domain.Address
	Amount *big.Int
}

type Repo interface {
	FindOne(c ctx.Ctx, key domain.AssetKey) (*Entry, error)
	FindAll(c ctx.Ctx) ([]*Entry, error)
	// Insert fails with domain.ErrConflict when the key already holds funds
	Insert(c ctx.Ctx, e *Entry) error
	Remove(c ctx.Ctx, key domain.AssetKey) error
}

// Ledger keeps every unit accepted for a bid until it is refunded in full or disbursed.
type Ledger interface {
	// Hold collects amount from depositor and keeps it under key
	Hold(c ctx.Ctx, key domain.AssetKey, depositor domain.Address, amount *big.Int) error
	// Refund pays the held amount back to its depositor and releases the key
	Refund(c ctx.Ctx, key domain.AssetKey) (*Entry, error)
	// Disburse pays the held amount out. The payouts must add up to it exactly.
	Disburse(c ctx.Ctx, key domain.AssetKey, payouts []Payout) (*Entry, error)
	Held(c ctx.Ctx, key domain.AssetKey) (*big.Int, error)
	TotalHeld(c ctx.Ctx) (*big.Int, error)
}
