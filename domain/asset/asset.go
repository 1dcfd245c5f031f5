package asset

import (
	"math/big"
	"time"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/domain"
)

type Kind int

const (
	KindUnknown Kind = 0
	Kind721     Kind = 721
	Kind1155    Kind = 1155
)

func (k Kind) IsValid() bool {
	return k == Kind721 || k == Kind1155
}

// Contract is the transfer capability of one asset contract over the custody book.
// Single-owner and multi-balance contracts implement it differently.
type Contract interface {
	Address() domain.Address
	Kind() Kind

	// OwnerOf is only meaningful for single-owner tokens
	OwnerOf(c ctx.Ctx, tokenId domain.TokenId) (domain.Address, error)
	BalanceOf(c ctx.Ctx, holder domain.Address, tokenId domain.TokenId) (*big.Int, error)
	// IsOwner reports whether holder may sell tokenId
	IsOwner(c ctx.Ctx, holder domain.Address, tokenId domain.TokenId) (bool, error)

	IsApprovedForAll(c ctx.Ctx, owner, operator domain.Address) (bool, error)
	SetApprovalForAll(c ctx.Ctx, owner, operator domain.Address, approved bool) error

	// Transfer fails with domain.ErrTransferFailed when from cannot cover amount
	Transfer(c ctx.Ctx, from, to domain.Address, tokenId domain.TokenId, amount *big.Int) error
	// Credit books tokens that entered custody
	Credit(c ctx.Ctx, to domain.Address, tokenId domain.TokenId, amount *big.Int) error
}

// Resolver picks the Contract variant for an asset contract address
type Resolver interface {
	Resolve(c ctx.Ctx, contract domain.Address) (Contract, error)
	Register(c ctx.Ctx, contract domain.Address, kind Kind) error
}

// KindDetector asks the chain which token standard a contract implements
type KindDetector interface {
	DetectKind(c ctx.Ctx, contract domain.Address) (Kind, error)
}

type ContractInfo struct {
	Address   domain.Address `json:"address" bson:"address"`
	Kind      Kind           `json:"kind" bson:"kind"`
	CreatedAt time.Time      `json:"createdAt" bson:"createdAt"`
}

type HoldingId struct {
	Contract domain.Address `bson:"contract"`
	TokenId  domain.TokenId `bson:"tokenId"`
	Owner    domain.Address `bson:"owner"`
}

type Holding struct {
	Contract  domain.Address `json:"contract" bson:"contract"`
	TokenId   domain.TokenId `json:"tokenId" bson:"tokenId"`
	Owner     domain.Address `json:"owner" bson:"owner"`
	Balance   string         `json:"balance" bson:"balance"`
	UpdatedAt time.Time      `json:"updatedAt" bson:"updatedAt"`
}

func (h *Holding) ToId() HoldingId {
	return HoldingId{Contract: h.Contract, TokenId: h.TokenId, Owner: h.Owner}
}

func (h *Holding) BalanceInt() *big.Int {
	n, ok := new(big.Int).SetString(h.Balance, 10)
	if !ok {
		return new(big.Int)
	}
	return n
}

type ApprovalId struct {
	Contract domain.Address `bson:"contract"`
	Owner    domain.Address `bson:"owner"`
	Operator domain.Address `bson:"operator"`
}

type Approval struct {
	Contract  domain.Address `json:"contract" bson:"contract"`
	Owner     domain.Address `json:"owner" bson:"owner"`
	Operator  domain.Address `json:"operator" bson:"operator"`
	Approved  bool           `json:"approved" bson:"approved"`
	UpdatedAt time.Time      `json:"updatedAt" bson:"updatedAt"`
}

func (a *Approval) ToId() ApprovalId {
	return ApprovalId{Contract: a.Contract, Owner: a.Owner, Operator: a.Operator}
}

type ContractRepo interface {
	FindOne(c ctx.Ctx, address domain.Address) (*ContractInfo, error)
	Upsert(c ctx.Ctx, info *ContractInfo) error
}

type HoldingRepo interface {
	FindOne(c ctx.Ctx, id HoldingId) (*Holding, error)
	// FindByToken lists every holder with a positive balance of one token
	FindByToken(c ctx.Ctx, key domain.AssetKey) ([]*Holding, error)
	Upsert(c ctx.Ctx, h *Holding) error
	Remove(c ctx.Ctx, id HoldingId) error
}

type ApprovalRepo interface {
	FindOne(c ctx.Ctx, id ApprovalId) (*Approval, error)
	Upsert(c ctx.Ctx, a *Approval) error
}

// UseCase is the custody book surface used by the http layer and the deposit tracker.
// Approvals are always granted to the marketplace operator.
type UseCase interface {
	Register(c ctx.Ctx, contract domain.Address, kind Kind) error
	Kind(c ctx.Ctx, contract domain.Address) (Kind, error)
	Deposit(c ctx.Ctx, key domain.AssetKey, to domain.Address, amount *big.Int) error
	SetApprovalForAll(c ctx.Ctx, owner, contract domain.Address, approved bool) error
	IsApprovedForAll(c ctx.Ctx, owner, contract domain.Address) (bool, error)
	Holders(c ctx.Ctx, key domain.AssetKey) ([]*Holding, error)
}
