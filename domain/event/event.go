package event

import (
	"time"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/ptr"
	"github.com/x-xyz/treemarket/domain"
)

type Type string

const (
	TypeBidPlaced       Type = "BidPlaced"
	TypeBidRefunded     Type = "BidRefunded"
	TypeBidCancelled    Type = "BidCancelled"
	TypeBidRejected     Type = "BidRejected"
	TypeBidAccepted     Type = "BidAccepted"
	TypeTreasuryUpdated Type = "TreasuryUpdated"
)

// Event is the audit record of one registry transition. Actor is whoever caused it;
// Counterparty is the refunded bidder, the buyer, or the new treasury depending on Type.
type Event struct {
	Id           string         `json:"id" bson:"id"`
	Type         Type           `json:"type" bson:"type"`
	Contract     domain.Address `json:"contract,omitempty" bson:"contract,omitempty"`
	TokenId      domain.TokenId `json:"tokenId,omitempty" bson:"tokenId,omitempty"`
	Actor        domain.Address `json:"actor" bson:"actor"`
	Counterparty domain.Address `json:"counterparty,omitempty" bson:"counterparty,omitempty"`
	Price        string         `json:"price,omitempty" bson:"price,omitempty"`
	CreatedAt    time.Time      `json:"createdAt" bson:"createdAt"`
}

type FindAllOptions struct {
	Contract *domain.Address
	TokenId  *domain.TokenId
	Type     *Type
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

func WithAsset(key domain.AssetKey) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		contract := key.Contract.ToLower()
		tokenId := key.TokenId
		options.Contract = &contract
		options.TokenId = &tokenId
		return nil
	}
}

func WithContract(contract domain.Address) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		c := contract.ToLower()
		options.Contract = &c
		return nil
	}
}

func WithType(t Type) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Type = &t
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
	Insert(c ctx.Ctx, e *Event) error
	FindAll(c ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Event, error)
}

// Notifier delivers committed events to an outside channel
type Notifier interface {
	Notify(c ctx.Ctx, e *Event) error
}

type UseCase interface {
	// Record persists e with the caller's transaction and fills its id and timestamp
	Record(c ctx.Ctx, e *Event) error
	// Dispatch hands committed events to the notifiers without blocking the caller
	Dispatch(c ctx.Ctx, events []*Event)
	List(c ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Event, error)
}
