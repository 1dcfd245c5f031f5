package usecase

import (
	"math/big"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/base/log"
	"github.com/x-xyz/treemarket/domain"
	"github.com/x-xyz/treemarket/domain/asset"
	"github.com/x-xyz/treemarket/domain/keys"
)

type AssetUseCaseCfg struct {
	Resolver   asset.Resolver
	Holdings   asset.HoldingRepo
	Locker     domain.Locker
	Transactor domain.Transactor
	// Operator is the marketplace account approvals are granted to
	Operator domain.Address
}

type impl struct {
	resolver asset.Resolver
	holdings asset.HoldingRepo
	locker   domain.Locker
	tx       domain.Transactor
	operator domain.Address
}

func New(cfg *AssetUseCaseCfg) asset.UseCase {
	return &impl{
		resolver: cfg.Resolver,
		holdings: cfg.Holdings,
		locker:   cfg.Locker,
		tx:       cfg.Transactor,
		operator: cfg.Operator,
	}
}

func (im *impl) Register(c ctx.Ctx, contract domain.Address, kind asset.Kind) error {
	return im.resolver.Register(c, contract, kind)
}

func (im *impl) Kind(c ctx.Ctx, contract domain.Address) (asset.Kind, error) {
	token, err := im.resolver.Resolve(c, contract)
	if err != nil {
		return asset.KindUnknown, err
	}
	return token.Kind(), nil
}

// Deposit shares the bid lock so a credit never interleaves with a settlement of the same token
func (im *impl) Deposit(c ctx.Ctx, key domain.AssetKey, to domain.Address, amount *big.Int) error {
	key = domain.NewAssetKey(key.Contract, key.TokenId)
	if err := key.Validate(); err != nil {
		return err
	}
	unlock, err := im.locker.Lock(c, keys.BidLockKey(string(key.Contract), key.TokenId.String()))
	if err != nil {
		return err
	}
	defer unlock()

	return im.tx.RunWithTransaction(c, func(c ctx.Ctx) error {
		contract, err := im.resolver.Resolve(c, key.Contract)
		if err != nil {
			return err
		}
		if err := contract.Credit(c, to, key.TokenId, amount); err != nil {
			c.WithFields(log.Fields{"err": err, "key": key, "to": to}).Warn("failed to contract.Credit")
			return err
		}
		return nil
	})
}

func (im *impl) SetApprovalForAll(c ctx.Ctx, owner, contract domain.Address, approved bool) error {
	token, err := im.resolver.Resolve(c, contract)
	if err != nil {
		return err
	}
	return token.SetApprovalForAll(c, owner, im.operator, approved)
}

func (im *impl) IsApprovedForAll(c ctx.Ctx, owner, contract domain.Address) (bool, error) {
	token, err := im.resolver.Resolve(c, contract)
	if err != nil {
		return false, err
	}
	return token.IsApprovedForAll(c, owner, im.operator)
}

func (im *impl) Holders(c ctx.Ctx, key domain.AssetKey) ([]*asset.Holding, error) {
	key = domain.NewAssetKey(key.Contract, key.TokenId)
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return im.holdings.FindByToken(c, key)
}
