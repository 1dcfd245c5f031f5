package bid

import (
	"math/big"
	"time"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/ptr"
	"github.com/x-xyz/treemarket/domain"
)

// Bid is the single active offer on one token. Price and the escrowed amount are kept as
// base-10 strings of base units.
type Bid struct {
	Contract  domain.Address `json:"contract" bson:"contract"`
	TokenId   domain.TokenId `json:"tokenId" bson:"tokenId"`
	Bidder    domain.Address `json:"bidder" bson:"bidder"`
	Price     string         `json:"price" bson:"price"`
	Escrowed  string         `json:"escrowed" bson:"escrowed"`
	CreatedAt time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// None is the zero-bid sentinel returned for keys without an active bid
func None(key domain.AssetKey) *Bid {
	return &Bid{
		Contract: key.Contract,
		TokenId:  key.TokenId,
		Bidder:   domain.EmptyAddress,
		Price:    "0",
		Escrowed: "0",
	}
}

func (b *Bid) Key() domain.AssetKey {
	return domain.NewAssetKey(b.Contract, b.TokenId)
}

func (b *Bid) PriceInt() *big.Int {
	n, ok := new(big.Int).SetString(b.Price, 10)
	if !ok {
		return new(big.Int)
	}
	return n
}

func (b *Bid) IsActive() bool {
	return b.PriceInt().Sign() > 0
}

// Settlement describes how an accepted bid was paid out
type Settlement struct {
	Bid      Bid            `json:"bid"`
	Seller   domain.Address `json:"seller"`
	Treasury domain.Address `json:"treasury"`
	Fee      string         `json:"fee"`
	Proceeds string         `json:"proceeds"`
}

type FindAllOptions struct {
	Contract *domain.Address
	Bidder   *domain.Address
	Offset   *int32
	Limit    *int32
}

type FindAllOptionsFunc func(*FindAllOptions) error

func GetFindAllOptions(opts ...FindAllOptionsFunc) (FindAllOptions, error) {
	res := FindAllOptions{}

	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}

	return res, nil
}

func WithContract(contract domain.Address) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		c := contract.ToLower()
		options.Contract = &c
		return nil
	}
}

func WithBidder(bidder domain.Address) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		b := bidder.ToLower()
		options.Bidder = &b
		return nil
	}
}

func WithPagination(offset int32, limit int32) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		if offset < 0 || limit < 0 {
			return domain.ErrBadParamInput
		}
		options.Offset = ptr.Int32(offset)
		options.Limit = ptr.Int32(limit)
		return nil
	}
}

type Repo interface {
	// FindOne returns domain.ErrNotFound when the key has no active bid
	FindOne(c ctx.Ctx, key domain.AssetKey) (*Bid, error)
	FindAll(c ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Bid, error)
	Upsert(c ctx.Ctx, b *Bid) error
	Remove(c ctx.Ctx, key domain.AssetKey) error
}

type UseCase interface {
	PlaceBid(c ctx.Ctx, caller domain.Address, key domain.AssetKey, price, attached *big.Int) (*Bid, error)
	// GetBid never fails for a missing bid; it returns None(key) instead
	GetBid(c ctx.Ctx, key domain.AssetKey) (*Bid, error)
	CancelBid(c ctx.Ctx, caller domain.Address, key domain.AssetKey) error
	AcceptBid(c ctx.Ctx, caller domain.Address, key domain.AssetKey, expectedPrice *big.Int) (*Settlement, error)
	RejectBid(c ctx.Ctx, caller domain.Address, key domain.AssetKey) error
	List(c ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Bid, error)

	UpdateTreasuryAddress(c ctx.Ctx, caller domain.Address, newAddress domain.Address) error
	Treasury(c ctx.Ctx) (domain.Address, error)
}
