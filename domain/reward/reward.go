package reward

import (
	"math/big"
	"time"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/domain"
)

type TransitionKind string

const (
	TransitionPlaced    TransitionKind = "placed"
	TransitionReplaced  TransitionKind = "replaced"
	TransitionCancelled TransitionKind = "cancelled"
	TransitionRejected  TransitionKind = "rejected"
	TransitionAccepted  TransitionKind = "accepted"
)

// Transition is one state change of the bid registry. Seller is only set on acceptance and
// Previous only on replacement.
type Transition struct {
	Kind     TransitionKind
	Key      domain.AssetKey
	Bidder   domain.Address
	Seller   domain.Address
	Previous domain.Address
	Price    *big.Int
}

type Grant struct {
	To     domain.Address
	Amount *big.Int
}

// AccrualPolicy decides who earns governance tokens for a transition
type AccrualPolicy interface {
	Accrue(t Transition) []Grant
}

// TokenState is the persisted governance token header
type TokenState struct {
	Symbol      string         `json:"symbol" bson:"symbol"`
	Owner       domain.Address `json:"owner" bson:"owner"`
	TotalSupply string         `json:"totalSupply" bson:"totalSupply"`
	UpdatedAt   time.Time      `json:"updatedAt" bson:"updatedAt"`
}

type Balance struct {
	Symbol    string         `json:"symbol" bson:"symbol"`
	Holder    domain.Address `json:"holder" bson:"holder"`
	Amount    string         `json:"amount" bson:"amount"`
	UpdatedAt time.Time      `json:"updatedAt" bson:"updatedAt"`
}

func (b *Balance) AmountInt() *big.Int {
	n, ok := new(big.Int).SetString(b.Amount, 10)
	if !ok {
		return new(big.Int)
	}
	return n
}

type Repo interface {
	FindToken(c ctx.Ctx, symbol string) (*TokenState, error)
	UpsertToken(c ctx.Ctx, t *TokenState) error
	FindBalance(c ctx.Ctx, symbol string, holder domain.Address) (*Balance, error)
	UpsertBalance(c ctx.Ctx, b *Balance) error
}

// Token is the mintable governance token. Only its owner may mint.
type Token interface {
	Create(c ctx.Ctx, owner domain.Address) (*TokenState, error)
	Mint(c ctx.Ctx, caller, to domain.Address, amount *big.Int) error
	BalanceOf(c ctx.Ctx, holder domain.Address) (*big.Int, error)
	Owner(c ctx.Ctx) (domain.Address, error)
	TransferOwnership(c ctx.Ctx, caller, newOwner domain.Address) error
}

// Emitter mints what the configured policy grants for a transition
type Emitter interface {
	Emit(c ctx.Ctx, t Transition) ([]Grant, error)
}
